// Package speech holds the playback side of the speech collaborators. Audio
// synthesis itself lives outside this module; Console stands in for it on a
// terminal.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"turn-translator/internal/domain"
)

// Playback renders text as speech.
type Playback interface {
	Speak(ctx context.Context, text, language string) error
	Stop()
}

// Console prints each utterance with its synthesis voice instead of playing
// audio.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	stopped bool
}

func NewConsole(w io.Writer) (*Console, error) {
	if w == nil {
		return nil, errors.New("speech: writer must not be nil")
	}
	return &Console{w: w}, nil
}

func (c *Console) Speak(ctx context.Context, text, language string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = false
	if _, err := fmt.Fprintf(c.w, "🔊 [%s] %s\n", domain.Voice(language), text); err != nil {
		return fmt.Errorf("speech: write: %w", err)
	}
	return nil
}

// Stop cancels the current utterance. Console output is immediate, so this
// only records that playback was interrupted.
func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

func (c *Console) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
