package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguage(t *testing.T) {
	require.Equal(t, "pt", NormalizeLanguage(" pt-BR "))
	require.Equal(t, "en", NormalizeLanguage("EN_us"))
	require.Equal(t, "ko", NormalizeLanguage("ko"))
}

func TestIsSupported(t *testing.T) {
	require.True(t, IsSupported("pt"))
	require.True(t, IsSupported("fr-CA"))
	require.False(t, IsSupported("xx"))
	require.False(t, IsSupported(""))
}

func TestVoice_DefaultsToEnglish(t *testing.T) {
	require.Equal(t, "pt-BR", Voice("pt"))
	require.Equal(t, "ko-KR", Voice("ko"))
	require.Equal(t, "en-US", Voice("de"))
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Português", DisplayName("pt"))
	require.Equal(t, "xx", DisplayName("xx"))
}

func TestConversationClone_DoesNotAliasMessages(t *testing.T) {
	conv := Conversation{ID: "c1", Messages: []Message{{ID: "m1", Text: "hi", Timestamp: time.Unix(0, 0)}}}
	cp := conv.Clone()
	cp.Messages[0].Text = "changed"
	require.Equal(t, "hi", conv.Messages[0].Text)
}
