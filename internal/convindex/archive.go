package convindex

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// ArchiveSource reads conversations from a directory of line-delimited
// event archives, one JSON record per line.
type ArchiveSource struct {
	tag string
	dir string
}

// NewArchiveSource returns a Source enumerating every *.jsonl file in dir
// (non-recursive) tagged with tag (e.g. "claude-code").
func NewArchiveSource(tag, dir string) *ArchiveSource {
	return &ArchiveSource{tag: tag, dir: dir}
}

func (s *ArchiveSource) SourceTag() string { return s.tag }

func (s *ArchiveSource) CurrentArtifacts() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ctxerrors.IngestionItem("failed to list archive directory", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		out = append(out, filepath.Join(s.dir, e.Name()))
	}
	return out, nil
}

type archiveRecord struct {
	Kind string `json:"kind"`

	SessionID     string `json:"sessionId"`
	ClientVersion string `json:"clientVersion"`
	Timestamp     string `json:"timestamp"`

	Content      string            `json:"content"`
	ToolRequests []archiveToolCall `json:"toolRequests"`
	Name         string            `json:"name"`
}

type archiveToolCall struct {
	Name string `json:"name"`
	Tool string `json:"tool"`
}

func (t archiveToolCall) toolName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Tool
}

// Parse reads path as a line-delimited event archive and builds the
// canonical conversation. A missing session.start record is a parse error.
// Exchanges are built by alternation: each user.message opens a new
// in-progress exchange; following assistant.message records append to its
// assistant text; tool names from either accumulate into its tool list. An
// in-progress exchange is only emitted once it has non-empty user and
// assistant text.
func (s *ArchiveSource) Parse(path string) (*ParsedConversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ctxerrors.IngestionItem("failed to open conversation archive", err)
	}
	defer f.Close()

	var (
		sessionID, clientVersion string
		startTime                time.Time
		haveStart                bool

		exchanges []ParsedExchange
		inUser    string
		inAssist  string
		inTools   []string
		inOpen    bool
		pos       int
	)

	emit := func() {
		if inOpen && inUser != "" && inAssist != "" {
			exchanges = append(exchanges, ParsedExchange{
				Position:      pos,
				Timestamp:     startTime,
				UserText:      inUser,
				AssistantText: inAssist,
				ToolCalls:     inTools,
			})
			pos++
		}
		inUser, inAssist, inTools, inOpen = "", "", nil, false
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec archiveRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, ctxerrors.IngestionItem("failed to parse archive record", err)
		}

		switch rec.Kind {
		case "session.start":
			sessionID = rec.SessionID
			clientVersion = rec.ClientVersion
			if t, err := time.Parse(time.RFC3339, rec.Timestamp); err == nil {
				startTime = t
			}
			haveStart = true
		case "user.message":
			emit()
			inUser = rec.Content
			inOpen = true
		case "assistant.message":
			if inAssist == "" {
				inAssist = rec.Content
			} else if rec.Content != "" {
				inAssist += "\n" + rec.Content
			}
			for _, tr := range rec.ToolRequests {
				if name := tr.toolName(); name != "" {
					inTools = append(inTools, name)
				}
			}
		case "tool.call", "tool.invoke":
			if rec.Name != "" {
				inTools = append(inTools, rec.Name)
			}
		}
	}
	emit()

	if err := scanner.Err(); err != nil {
		return nil, ctxerrors.IngestionItem("failed to read conversation archive", err)
	}
	if !haveStart {
		return nil, ctxerrors.IngestionItem("archive missing session.start record", nil)
	}

	return &ParsedConversation{
		ID:            sessionID,
		SessionID:     sessionID,
		Timestamp:     startTime,
		ClientVersion: clientVersion,
		Exchanges:     exchanges,
	}, nil
}
