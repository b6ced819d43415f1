package history

import (
	"strings"

	"turn-translator/internal/domain"
)

// Export renders a conversation as plain text, one "[HH:MM:SS] lang: text"
// line per message.
func Export(conv domain.Conversation) string {
	lines := make([]string, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		lines = append(lines, "["+m.Timestamp.UTC().Format("15:04:05")+"] "+m.Language+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}
