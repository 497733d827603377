package mcpserver

import (
	"fmt"
	"strings"

	"github.com/timbuchinger/context-cache/internal/search"
)

// FormatHybridResults formats hybrid search hits as markdown.
func FormatHybridResults(query string, hits []search.Hit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No results found for %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q\n\n", query)
	fmt.Fprintf(&sb, "Found %d result", len(hits))
	if len(hits) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, h := range hits {
		fmt.Fprintf(&sb, "### %d. %s (score %.3f)\n\n", i+1, h.FilePath, h.Score)
		sb.WriteString(h.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// FormatConversationResults formats conversation search hits as markdown.
func FormatConversationResults(query string, hits []search.ConversationHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No conversation matches found for %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Conversation matches for %q\n\n", query)
	for i, h := range hits {
		fmt.Fprintf(&sb, "### %d. %s (exchange %d, %s)\n\n", i+1, h.ArchivePath, h.Position, h.Timestamp)
		fmt.Fprintf(&sb, "**User:** %s\n\n", h.UserText)
		fmt.Fprintf(&sb, "**Assistant:** %s\n\n", h.AssistantText)
	}
	return sb.String()
}
