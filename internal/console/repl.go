// Package console runs a session from a line-oriented terminal. Each plain
// line is one final transcript from the current speaker; lines starting
// with "/" are commands.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"turn-translator/internal/domain"
	"turn-translator/internal/translation"
	"turn-translator/internal/turn"
	"turn-translator/internal/usecase"
)

// Session is satisfied by *usecase.Session.
type Session interface {
	HandleUtterance(ctx context.Context, text string) (usecase.Exchange, error)
	SwitchSpeaker() turn.Speaker
	SwapLanguages() (source, target string)
	SetLanguages(ctx context.Context, source, target string) (domain.Conversation, error)
	Archive(ctx context.Context) domain.Conversation
	LoadConversation(id string) (domain.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ClearHistory(ctx context.Context)
	Replay(ctx context.Context, messageID string) (domain.Message, error)
	Summarize(ctx context.Context) (domain.SummaryResult, error)
	Export(id string) (string, error)
	Current() (domain.Conversation, bool)
	Conversations() []domain.Conversation
	Speaker() turn.Speaker
	Roles() (spoken, other string)
}

const helpText = `commands:
  /switch              hand the turn to the other speaker
  /swap                exchange source and target languages
  /lang <src> <tgt>    change the language pair (starts a new conversation)
  /archive             keep this conversation and start a new one
  /history             list stored conversations
  /load <id>           resume a stored conversation
  /delete <id>         delete a stored conversation
  /clear               delete all conversations
  /show                print the current conversation
  /replay <msg-id>     speak a stored message again
  /summary             summarize the current conversation
  /export [id]         print a conversation as text
  /help                show this help
  /quit                exit
`

var errQuit = errors.New("quit")

type REPL struct {
	session Session
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
}

func New(session Session, in io.Reader, out io.Writer, logger *slog.Logger) (*REPL, error) {
	if session == nil {
		return nil, errors.New("console: session must not be nil")
	}
	if in == nil || out == nil {
		return nil, errors.New("console: input and output must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &REPL{session: session, in: in, out: out, logger: logger}, nil
}

// Run reads until EOF, /quit or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	r.prompt()
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			r.prompt()
			continue
		}
		if err := r.dispatch(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			r.printError(err)
		}
		r.prompt()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("console: read input: %w", err)
	}
	return nil
}

func (r *REPL) prompt() {
	spoken, other := r.session.Roles()
	fmt.Fprintf(r.out, "[%s %s→%s] > ", r.session.Speaker(), spoken, other)
}

func (r *REPL) dispatch(ctx context.Context, line string) error {
	if !strings.HasPrefix(line, "/") {
		return r.utterance(ctx, line)
	}

	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprint(r.out, helpText)
	case "/switch":
		fmt.Fprintf(r.out, "speaker: %s\n", r.session.SwitchSpeaker())
	case "/swap":
		src, tgt := r.session.SwapLanguages()
		fmt.Fprintf(r.out, "languages: %s → %s\n", src, tgt)
	case "/lang":
		if len(args) != 2 {
			return errors.New("usage: /lang <source> <target>")
		}
		conv, err := r.session.SetLanguages(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "new conversation %s (%s → %s)\n", conv.ID, conv.SourceLanguage, conv.TargetLanguage)
	case "/archive":
		conv := r.session.Archive(ctx)
		fmt.Fprintf(r.out, "new conversation %s\n", conv.ID)
	case "/history":
		r.printHistory()
	case "/load":
		if len(args) != 1 {
			return errors.New("usage: /load <id>")
		}
		conv, err := r.session.LoadConversation(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "loaded %s (%s → %s, %d messages)\n", conv.ID, conv.SourceLanguage, conv.TargetLanguage, len(conv.Messages))
	case "/delete":
		if len(args) != 1 {
			return errors.New("usage: /delete <id>")
		}
		if err := r.session.DeleteConversation(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "deleted %s\n", args[0])
	case "/clear":
		r.session.ClearHistory(ctx)
		fmt.Fprintln(r.out, "history cleared")
	case "/show":
		r.printCurrent()
	case "/replay":
		if len(args) != 1 {
			return errors.New("usage: /replay <message-id>")
		}
		if _, err := r.session.Replay(ctx, args[0]); err != nil {
			return err
		}
	case "/summary":
		res, err := r.session.Summarize(ctx)
		if err != nil {
			return err
		}
		r.printSummary(res)
	case "/export":
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		text, err := r.session.Export(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, text)
	default:
		return fmt.Errorf("unknown command %s, try /help", cmd)
	}
	return nil
}

func (r *REPL) utterance(ctx context.Context, text string) error {
	ex, err := r.session.HandleUtterance(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s: %s\n", ex.Original.Language, ex.Original.Text)
	fmt.Fprintf(r.out, "%s: %s  (%s)\n", ex.Translation.Language, ex.Translation.Text, describe(ex.Result))
	if ex.Result.Notice != "" {
		fmt.Fprintf(r.out, "! %s\n", ex.Result.Notice)
	}
	if ex.PersistErr != nil {
		fmt.Fprintf(r.out, "! history not saved: %v\n", ex.PersistErr)
	}
	if ex.PlaybackErr != nil {
		fmt.Fprintf(r.out, "! playback failed: %v\n", ex.PlaybackErr)
	}
	return nil
}

func describe(res translation.Result) string {
	if res.Provider != "" {
		return fmt.Sprintf("%s via %s", res.Source, res.Provider)
	}
	return string(res.Source)
}

func (r *REPL) printHistory() {
	convs := r.session.Conversations()
	if len(convs) == 0 {
		fmt.Fprintln(r.out, "no conversations")
		return
	}
	for _, c := range convs {
		fmt.Fprintf(r.out, "%s  %s→%s  %3d msgs  %s\n",
			c.ID, c.SourceLanguage, c.TargetLanguage, len(c.Messages), c.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func (r *REPL) printCurrent() {
	conv, ok := r.session.Current()
	if !ok {
		fmt.Fprintln(r.out, "no current conversation")
		return
	}
	fmt.Fprintf(r.out, "conversation %s (%s → %s)\n", conv.ID, conv.SourceLanguage, conv.TargetLanguage)
	for _, m := range conv.Messages {
		marker := " "
		if m.IsTranslation {
			marker = "»"
		}
		fmt.Fprintf(r.out, "%s %s [%s] %s\n", m.ID, marker, m.Language, m.Text)
	}
}

func (r *REPL) printSummary(res domain.SummaryResult) {
	fmt.Fprintf(r.out, "summary: %s\n", res.Summary)
	for _, p := range res.KeyPoints {
		fmt.Fprintf(r.out, "  • %s\n", p)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(r.out, "  ✗ %s\n", e)
	}
	st := res.Statistics
	fmt.Fprintf(r.out, "%d messages, %d words, %s\n", st.TotalMessages, st.TotalWords, st.Duration)
}

func (r *REPL) printError(err error) {
	var ue *usecase.Error
	if errors.As(err, &ue) {
		r.logger.Debug("command failed", "code", string(ue.Code), "reason", ue.Reason, "err", ue.Err)
		fmt.Fprintf(r.out, "error: %s (%s)\n", ue.Code, ue.Reason)
		return
	}
	fmt.Fprintf(r.out, "error: %v\n", err)
}
