// Package display renders a line-delimited conversation archive into
// human-readable text, bypassing the Store entirely: the canonical
// Exchange record drops formatting detail the store's schema was never
// meant to keep.
package display

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Range bounds a rendered exchange selection, 1-indexed and inclusive.
// Zero means unbounded on that side.
type Range struct {
	Start int
	End   int
}

type record struct {
	Kind string `json:"kind"`

	SessionID     string `json:"sessionId"`
	ClientVersion string `json:"clientVersion"`
	Timestamp     string `json:"timestamp"`

	Content      string   `json:"content"`
	ToolRequests []toolRq `json:"toolRequests"`
	Name         string   `json:"name"`
}

type toolRq struct {
	Name string `json:"name"`
	Tool string `json:"tool"`
}

func (t toolRq) toolName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Tool
}

type exchange struct {
	userText      string
	assistantText string
	tools         []string
}

// Render parses the archive at path and returns a human-readable document:
// session metadata, then one section per exchange in [bounds.Start,
// bounds.End] (1-indexed, inclusive; zero bounds mean unbounded). A missing
// file returns a one-line error message rather than raising.
func Render(path string, bounds Range) string {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Sprintf("error: could not open conversation archive %q: %v", path, err)
	}
	defer f.Close()

	var (
		sessionID, clientVersion, timestamp string
		exchanges                           []exchange
		curUser, curAssist                  string
		curTools                            []string
		open                                bool
	)

	emit := func() {
		if open && curUser != "" && curAssist != "" {
			exchanges = append(exchanges, exchange{userText: curUser, assistantText: curAssist, tools: curTools})
		}
		curUser, curAssist, curTools, open = "", "", nil, false
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		switch rec.Kind {
		case "session.start":
			sessionID = rec.SessionID
			clientVersion = rec.ClientVersion
			timestamp = rec.Timestamp
		case "user.message":
			emit()
			curUser = rec.Content
			open = true
		case "assistant.message":
			if curAssist == "" {
				curAssist = rec.Content
			} else if rec.Content != "" {
				curAssist += "\n" + rec.Content
			}
			for _, tr := range rec.ToolRequests {
				if name := tr.toolName(); name != "" {
					curTools = append(curTools, name)
				}
			}
		case "tool.call", "tool.invoke":
			if rec.Name != "" {
				curTools = append(curTools, rec.Name)
			}
		}
	}
	emit()

	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	if clientVersion != "" {
		fmt.Fprintf(&b, "Client version: %s\n", clientVersion)
	}
	if timestamp != "" {
		fmt.Fprintf(&b, "Started: %s\n", timestamp)
	}
	b.WriteString("\n")

	start, end := bounds.Start, bounds.End
	if start <= 0 {
		start = 1
	}
	if end <= 0 || end > len(exchanges) {
		end = len(exchanges)
	}

	for i := start; i <= end; i++ {
		if i < 1 || i > len(exchanges) {
			continue
		}
		ex := exchanges[i-1]
		fmt.Fprintf(&b, "--- Exchange %d ---\n", i)
		fmt.Fprintf(&b, "User: %s\n", ex.userText)
		fmt.Fprintf(&b, "Assistant: %s\n", ex.assistantText)
		if len(ex.tools) > 0 {
			fmt.Fprintf(&b, "Tools used: %s\n", strings.Join(ex.tools, ", "))
		}
		b.WriteString("\n")
	}

	return b.String()
}
