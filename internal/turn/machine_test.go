package turn

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCycle(t *testing.T, m *Machine) Utterance {
	t.Helper()
	u, err := m.Begin()
	require.NoError(t, err)
	accepted, flipped := m.Complete(u.Seq)
	require.True(t, accepted)
	require.True(t, flipped)
	return u
}

func TestMachine_InitialState(t *testing.T) {
	m := New("pt", "en")
	require.Equal(t, SpeakerSource, m.Current())
	spoken, other := m.Roles()
	require.Equal(t, "pt", spoken)
	require.Equal(t, "en", other)
	require.False(t, m.InFlight())
}

func TestMachine_Alternation(t *testing.T) {
	m := New("pt", "en")
	for k := 1; k <= 7; k++ {
		u := runCycle(t, m)
		if k%2 == 1 {
			require.Equal(t, SpeakerSource, u.Speaker)
			require.Equal(t, "pt", u.Spoken)
			require.Equal(t, "en", u.Other)
			require.Equal(t, SpeakerTarget, m.Current(), "after cycle %d", k)
		} else {
			require.Equal(t, "en", u.Spoken)
			require.Equal(t, "pt", u.Other)
			require.Equal(t, SpeakerSource, m.Current(), "after cycle %d", k)
		}
	}
}

func TestMachine_BeginWhileInFlight(t *testing.T) {
	m := New("pt", "en")
	u, err := m.Begin()
	require.NoError(t, err)
	require.True(t, m.InFlight())

	_, err = m.Begin()
	require.ErrorIs(t, err, ErrTurnInProgress)

	m.Complete(u.Seq)
	_, err = m.Begin()
	require.NoError(t, err)
}

func TestMachine_CompleteOnlyOnce(t *testing.T) {
	m := New("pt", "en")
	u, err := m.Begin()
	require.NoError(t, err)

	accepted, flipped := m.Complete(u.Seq)
	require.True(t, accepted)
	require.True(t, flipped)

	accepted, flipped = m.Complete(u.Seq)
	require.False(t, accepted)
	require.False(t, flipped)
	require.Equal(t, SpeakerTarget, m.Current())
}

func TestMachine_StaleSeqIgnored(t *testing.T) {
	m := New("pt", "en")
	first := runCycle(t, m)
	second, err := m.Begin()
	require.NoError(t, err)

	accepted, _ := m.Complete(first.Seq)
	require.False(t, accepted)
	require.True(t, m.InFlight())

	accepted, _ = m.Complete(second.Seq)
	require.True(t, accepted)
}

func TestMachine_LateCompletionAfterSwitchDoesNotFlip(t *testing.T) {
	m := New("pt", "en")
	u, err := m.Begin()
	require.NoError(t, err)

	require.Equal(t, SpeakerTarget, m.Switch())

	accepted, flipped := m.Complete(u.Seq)
	require.True(t, accepted)
	require.False(t, flipped)
	require.Equal(t, SpeakerTarget, m.Current())
}

func TestMachine_SwitchWhileIdle(t *testing.T) {
	m := New("pt", "en")
	m.Switch()
	u := runCycle(t, m)
	require.Equal(t, SpeakerTarget, u.Speaker)
	require.Equal(t, "en", u.Spoken)
	require.Equal(t, SpeakerSource, m.Current())
}

func TestMachine_SwapResetsToSource(t *testing.T) {
	m := New("pt", "en")
	runCycle(t, m)
	require.Equal(t, SpeakerTarget, m.Current())

	src, tgt := m.Swap()
	require.Equal(t, "en", src)
	require.Equal(t, "pt", tgt)
	require.Equal(t, SpeakerSource, m.Current())

	spoken, other := m.Roles()
	require.Equal(t, "en", spoken)
	require.Equal(t, "pt", other)
}

func TestMachine_SwapDuringFlightBlocksFlip(t *testing.T) {
	m := New("pt", "en")
	u, err := m.Begin()
	require.NoError(t, err)
	m.Swap()

	_, flipped := m.Complete(u.Seq)
	require.False(t, flipped)
	require.Equal(t, SpeakerSource, m.Current())
}

func TestMachine_SetLanguages(t *testing.T) {
	m := New("pt", "en")
	m.Switch()
	m.SetLanguages("es", "fr")
	src, tgt := m.Languages()
	require.Equal(t, "es", src)
	require.Equal(t, "fr", tgt)
	require.Equal(t, SpeakerSource, m.Current())
}

func TestMachine_ConcurrentCompletionsFlipOnce(t *testing.T) {
	m := New("pt", "en")
	u, err := m.Begin()
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	flips := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, flipped := m.Complete(u.Seq); flipped {
				mu.Lock()
				flips++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, flips)
	require.Equal(t, SpeakerTarget, m.Current())
}

func TestSpeaker_String(t *testing.T) {
	require.Equal(t, "source", SpeakerSource.String())
	require.Equal(t, "target", SpeakerTarget.String())
}
