package chunker

import (
	"strings"

	"orgopivy/internal/domain"
)

// DefaultMaxChars is the default chunk window size in characters.
const DefaultMaxChars = 900

// DefaultOverlapChars is the default overlap between consecutive chunks.
const DefaultOverlapChars = 120

// WindowChunker splits text into overlapping character windows, snapping the
// cut to the last paragraph break inside the window when that break sits past
// half of the window size.
type WindowChunker struct {
	maxChars     int
	overlapChars int
}

func NewWindowChunker(maxChars, overlapChars int) *WindowChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	// Overlap must stay below the window size or the cursor cannot advance.
	if overlapChars >= maxChars {
		overlapChars = maxChars / 4
	}
	return &WindowChunker{maxChars: maxChars, overlapChars: overlapChars}
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	text := strings.TrimSpace(strings.ReplaceAll(document.Text, "\r\n", "\n"))
	if text == "" {
		return nil, nil
	}

	var chunks []domain.Chunk
	n := len(text)
	start := 0
	for start < n {
		end := start + c.maxChars
		if end > n {
			end = n
		}

		if end < n {
			window := text[start:end]
			if cut := strings.LastIndex(window, "\n\n"); cut != -1 && cut > c.maxChars/2 {
				end = start + cut
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, domain.Chunk{ID: len(chunks), Text: chunk})
		}

		if end == n {
			break
		}
		next := end - c.overlapChars
		if next < 0 {
			next = 0
		}
		// Guard against a stalled cursor regardless of configuration.
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks, nil
}
