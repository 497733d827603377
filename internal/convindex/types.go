// Package convindex reconciles the Store with captured agent conversations,
// polymorphic over where those conversations are read from (a line-
// delimited event archive, or a sibling foreign database).
package convindex

import "time"

// ParsedExchange is one user/assistant turn pair produced by a Source.
type ParsedExchange struct {
	Position      int
	Timestamp     time.Time
	UserText      string
	AssistantText string
	ToolCalls     []string
	ParentTurnID  string
}

// ParsedConversation is the canonical shape a Source must produce for one
// artifact, regardless of its origin format.
type ParsedConversation struct {
	ID            string
	SessionID     string
	Timestamp     time.Time
	ClientVersion string
	WorkingDir    string
	Exchanges     []ParsedExchange
}

// Source is the capability set the reconciler needs from a conversation
// provider: enumerate the artifacts currently present, and parse a single
// one into its canonical shape. Two concrete adapters implement this
// (archive.go, foreigndb.go); their parsing logic is never intermixed.
type Source interface {
	// SourceTag identifies the provider (e.g. "claude-code", "opencode").
	SourceTag() string
	// CurrentArtifacts lists every artifact pointer currently available
	// (archive file paths, or foreign-database session identifiers).
	CurrentArtifacts() ([]string, error)
	// Parse reads one artifact and returns its canonical conversation.
	Parse(artifact string) (*ParsedConversation, error)
}
