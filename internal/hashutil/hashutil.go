// Package hashutil computes stable content fingerprints used for
// skip/update/delete decisions during ingestion reconciliation.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strconv"
	"strings"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// ExchangeSource is the subset of Exchange fields the canonical conversation
// fingerprint depends on.
type ExchangeSource struct {
	Position      int
	UserText      string
	AssistantText string
}

// HashFile reads path as text and returns the lowercase hex SHA-256 digest
// of its full contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ctxerrors.IngestionItem("failed to read file for hashing", err)
	}
	return hashBytes(data), nil
}

// HashConversation returns the lowercase hex SHA-256 digest of a canonical
// string built from the Conversation's identifier, session identifier,
// source tag, and each Exchange's position/user text/assistant text, in
// deterministic order. Timestamps and tool-call lists are deliberately
// omitted so that re-exports changing only wall-clock metadata do not
// trigger re-embedding.
func HashConversation(conversationID, sessionID, sourceTag string, exchanges []ExchangeSource) string {
	var b strings.Builder
	b.WriteString(conversationID)
	b.WriteByte('\x1f')
	b.WriteString(sessionID)
	b.WriteByte('\x1f')
	b.WriteString(sourceTag)
	for _, e := range exchanges {
		b.WriteByte('\x1e')
		b.WriteString(strconv.Itoa(e.Position))
		b.WriteByte('\x1f')
		b.WriteString(e.UserText)
		b.WriteByte('\x1f')
		b.WriteString(e.AssistantText)
	}
	return hashBytes([]byte(b.String()))
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
