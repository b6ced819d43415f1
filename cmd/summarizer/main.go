package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"turn-translator/handler"
	"turn-translator/internal/config"
	"turn-translator/internal/integrations/openai"
	"turn-translator/internal/integrations/paramstore"
	"turn-translator/internal/translation"
	"turn-translator/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadSummarizer()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		logger.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(ssmClient, cfg.ParamPrefix, openai.WithBaseURL(cfg.OpenAIBaseURL))
	if err != nil {
		logger.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	libreKey, err := paramstore.LookupToken(ctx, ssmClient, cfg.LibreAPIKeyParam)
	if err != nil {
		logger.Warn("libretranslate api key unavailable, continuing without it", "err", err)
	}
	stages, err := cfg.Stages(nil, libreKey)
	if err != nil {
		logger.Error("failed to build translation providers", "err", err)
		os.Exit(1)
	}
	resolver, err := translation.NewResolver(translation.DefaultDictionary(), stages, translation.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create resolver", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	summarizeService, err := usecase.NewSummarizeService(ssmClient, openaiClient, cfg.ParamPrefix, cfg.OpenAIModel, cfg.MaxTranscriptLength)
	if err != nil {
		logger.Error("failed to create summarize service", "err", err)
		os.Exit(1)
	}
	translateService, err := usecase.NewTranslateService(resolver, 0)
	if err != nil {
		logger.Error("failed to create translate service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(summarizeService, translateService, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
