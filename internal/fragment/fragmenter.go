// Package fragment splits text blobs into ordered, overlapping word-window
// fragments for retrieval indexing.
package fragment

import "strings"

const (
	// DefaultLength is the target fragment length in characters.
	DefaultLength = 500
	// DefaultOverlap is the character overlap between consecutive fragments.
	DefaultOverlap = 50
)

// Options configures fragment length and overlap.
type Options struct {
	Length  int // target chunk length in characters
	Overlap int // overlap between consecutive chunks in characters
}

// DefaultOptions returns the engine's default fragment parameters.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, Overlap: DefaultOverlap}
}

// Split splits text into an ordered sequence of overlapping word-window
// fragments. If text fits within opts.Length it is returned unchanged as a
// single fragment. Otherwise each window backs off its end to the nearest
// preceding space so words are not split at an adjustable boundary; start
// boundaries are never adjusted and may split a word.
func Split(text string, opts Options) []string {
	if len(text) <= opts.Length {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var out []string
	start := 0
	for start < len(text) {
		end := start + opts.Length
		if end >= len(text) {
			end = len(text)
		} else if space := strings.LastIndex(text[start:end], " "); space > 0 {
			end = start + space
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			out = append(out, chunk)
		}

		if end >= len(text) {
			break
		}
		start += opts.Length - opts.Overlap
	}
	return out
}
