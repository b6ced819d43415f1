// Package handler exposes the summarizer and the translation cascade as an
// API Gateway proxy Lambda.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"turn-translator/internal/domain"
	"turn-translator/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 256 << 10
)

type SummarizeUseCase interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResult, error)
}

type TranslateUseCase interface {
	Translate(ctx context.Context, in usecase.TranslateInput) (usecase.TranslateOutput, error)
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Source         string `json:"source"`
	Provider       string `json:"provider,omitempty"`
	Notice         string `json:"notice,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type Handler struct {
	summarizer SummarizeUseCase
	translator TranslateUseCase
	logger     *slog.Logger
}

// NewHandler requires the summarizer; translator may be nil, in which case
// POST /translate answers 404.
func NewHandler(summarizer SummarizeUseCase, translator TranslateUseCase, logger *slog.Logger) (*Handler, error) {
	if summarizer == nil {
		return nil, errors.New("handler: summarize use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{summarizer: summarizer, translator: translator, logger: logger}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := h.logger.With("correlation_id", correlationID, "method", event.HTTPMethod, "path", event.Path)

	route := routeOf(event.Path)
	if route == "" || (route == "translate" && h.translator == nil) {
		return respondError(correlationID, http.StatusNotFound, "NOT_FOUND", "unknown_route"), nil
	}
	if event.HTTPMethod != http.MethodPost {
		return respondError(correlationID, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "post_only"), nil
	}

	body, err := requestBody(event)
	if err != nil {
		return respondError(correlationID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), err.Error()), nil
	}

	switch route {
	case "summarize":
		var req domain.SummaryRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return respondError(correlationID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "invalid_json"), nil
		}
		res, err := h.summarizer.Summarize(ctx, req)
		if err != nil {
			return h.fail(logger, correlationID, err), nil
		}
		logger.Info("summary generated", "total_messages", req.TotalMessages, "key_points", len(res.KeyPoints))
		return respondJSON(correlationID, http.StatusOK, res), nil

	default:
		var req translateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return respondError(correlationID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "invalid_json"), nil
		}
		out, err := h.translator.Translate(ctx, usecase.TranslateInput{
			Text:           req.Text,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
		if err != nil {
			return h.fail(logger, correlationID, err), nil
		}
		return respondJSON(correlationID, http.StatusOK, translateResponse{
			TranslatedText: out.TranslatedText,
			Source:         string(out.Source),
			Provider:       out.Provider,
			Notice:         out.Notice,
		}), nil
	}
}

func routeOf(path string) string {
	path = strings.TrimRight(path, "/")
	switch {
	case strings.HasSuffix(path, "/summarize"):
		return "summarize"
	case strings.HasSuffix(path, "/translate"):
		return "translate"
	}
	return ""
}

func requestBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, errors.New("invalid_base64_body")
		}
		body = decoded
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("body_too_large")
	}
	return body, nil
}

func (h *Handler) fail(logger *slog.Logger, correlationID string, err error) events.APIGatewayProxyResponse {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		logger.Error("unexpected error", "err", err)
		return respondError(correlationID, http.StatusInternalServerError, string(usecase.ErrorInternal), "unexpected_error")
	}
	status := statusFor(ue.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", string(ue.Code), "reason", ue.Reason, "err", ue.Err)
	} else {
		logger.Warn("request rejected", "code", string(ue.Code), "reason", ue.Reason)
	}
	return respondError(correlationID, status, string(ue.Code), ue.Reason)
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorEmptyConversation:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorTurnInProgress:
		return http.StatusConflict
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	case usecase.ErrorSummaryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func respondJSON(correlationID string, status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return respondError(correlationID, http.StatusInternalServerError, string(usecase.ErrorInternal), "encode_error")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}

func respondError(correlationID string, status int, code, reason string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Error: code, Reason: reason})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}
