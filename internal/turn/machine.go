// Package turn tracks which participant is speaking and which language each
// utterance is translated into.
package turn

import (
	"errors"
	"sync"
)

// ErrTurnInProgress is returned by Begin while the previous utterance has not
// completed.
var ErrTurnInProgress = errors.New("turn: previous utterance still in progress")

type Speaker int

const (
	SpeakerSource Speaker = iota
	SpeakerTarget
)

func (s Speaker) String() string {
	if s == SpeakerTarget {
		return "target"
	}
	return "source"
}

func (s Speaker) other() Speaker {
	if s == SpeakerSource {
		return SpeakerTarget
	}
	return SpeakerSource
}

// Utterance is a captured turn with its language roles fixed at Begin.
type Utterance struct {
	Seq     uint64
	Speaker Speaker
	Spoken  string
	Other   string
}

// Machine is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	source   string
	target   string
	speaker  Speaker
	seq      uint64
	inFlight bool
	// overridden is set when a manual switch or swap happens while an
	// utterance is in flight; its completion then leaves the speaker alone.
	overridden bool
}

func New(source, target string) *Machine {
	return &Machine{source: source, target: target, speaker: SpeakerSource}
}

// Begin opens the latch for a new utterance spoken by the current speaker.
func (m *Machine) Begin() (Utterance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return Utterance{}, ErrTurnInProgress
	}
	m.seq++
	m.inFlight = true
	m.overridden = false
	spoken, other := m.rolesLocked()
	return Utterance{Seq: m.seq, Speaker: m.speaker, Spoken: spoken, Other: other}, nil
}

// Complete closes the latch for utterance seq. Only the first completion of
// the open utterance is accepted; it flips the speaker unless a switch or
// swap intervened.
func (m *Machine) Complete(seq uint64) (accepted, flipped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inFlight || seq != m.seq {
		return false, false
	}
	m.inFlight = false
	if m.overridden {
		return true, false
	}
	m.speaker = m.speaker.other()
	return true, true
}

// Switch hands the turn to the other participant immediately.
func (m *Machine) Switch() Speaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speaker = m.speaker.other()
	m.overrideLocked()
	return m.speaker
}

// Swap exchanges the two languages and gives the turn back to the source
// speaker.
func (m *Machine) Swap() (source, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source, m.target = m.target, m.source
	m.speaker = SpeakerSource
	m.overrideLocked()
	return m.source, m.target
}

// SetLanguages replaces the language pair and resets to the source speaker.
func (m *Machine) SetLanguages(source, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source, m.target = source, target
	m.speaker = SpeakerSource
	m.overrideLocked()
}

func (m *Machine) Current() Speaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaker
}

// Languages returns the configured source and target languages.
func (m *Machine) Languages() (source, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source, m.target
}

// Roles returns the language the current speaker uses and the one the
// utterance will be translated into.
func (m *Machine) Roles() (spoken, other string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rolesLocked()
}

func (m *Machine) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

func (m *Machine) rolesLocked() (string, string) {
	if m.speaker == SpeakerSource {
		return m.source, m.target
	}
	return m.target, m.source
}

func (m *Machine) overrideLocked() {
	if m.inFlight {
		m.overridden = true
	}
}
