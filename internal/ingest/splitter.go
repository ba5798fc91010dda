package ingest

import (
	"fmt"
	"strings"
)

// defaultSeparators order boundaries from coarse to fine. The splitter only
// moves to a finer separator when a piece is still larger than the chunk
// size, so paragraphs survive intact whenever they fit.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks long text into overlapping chunks along natural
// boundaries. Sizes are measured in bytes.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter returns a splitter producing chunks of at most chunkSize
// bytes, with roughly chunkOverlap bytes of trailing context carried into
// the next chunk. A non-positive chunkSize falls back to 1000; an overlap
// that is negative or not smaller than the chunk size falls back to a
// fifth of it.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split breaks text into chunks. Chunks are trimmed of surrounding
// whitespace and empty chunks are dropped, so the result may be shorter
// than the input suggests.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the first separator that occurs in the text. The empty string
	// always matches and splits into individual characters, so with the
	// default set there is always a finer level to fall back to.
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var chunks []string
	var pending []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if len(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		// The piece alone exceeds the chunk size. Flush what fits, then
		// split it again at the next finer boundary.
		chunks = append(chunks, s.merge(pending)...)
		pending = nil
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	return append(chunks, s.merge(pending)...)
}

// merge greedily packs pieces into chunks of at most chunkSize bytes. When
// a chunk fills up, the window slides forward but keeps up to chunkOverlap
// bytes of trailing pieces so adjacent chunks share context.
func (s *Splitter) merge(pieces []string) []string {
	if len(pieces) == 0 {
		return nil
	}

	var chunks []string
	var window []string
	total := 0
	flush := func() {
		if joined := strings.TrimSpace(strings.Join(window, "")); joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && total > 0 {
			flush()
			for total > s.chunkOverlap || (total+len(piece) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	flush()
	return chunks
}

// splitKeepSeparator splits text by sep, attaching the separator to the
// start of the piece that follows it so no bytes are lost when pieces are
// rejoined. An empty separator splits into individual characters.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Section is one header-delimited portion of a markdown document.
type Section struct {
	Title   string
	Content string
}

// SplitSections breaks markdown content on second-level "## " headers.
// Text before the first header lands in a section titled "Introduction".
// Each section's content is re-titled with a single "# " header so the
// topic survives chunking. Sections with an empty body are dropped.
func SplitSections(content string) []Section {
	var sections []Section
	var body strings.Builder
	title := "Introduction"

	flush := func() {
		if text := strings.TrimSpace(body.String()); text != "" {
			sections = append(sections, Section{
				Title:   title,
				Content: fmt.Sprintf("# %s\n\n%s", title, text),
			})
		}
		body.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			title = strings.TrimSpace(line[3:])
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}
