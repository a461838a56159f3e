package utils

import "strings"

// ChunkText splits a long string into chunks of at most 'chunkSize'
// characters, re-including 'overlap' characters of trailing context at the
// start of each following chunk. Windows that do not reach the end of the
// text are cut back to the rightmost sentence terminator or newline inside
// the window, as long as that break falls no earlier than
// chunkSize-overlap characters in; otherwise the raw window boundary wins.
// Character-based on runes; identical input always yields identical output.
func ChunkText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	// The start position must strictly increase or the loop never ends.
	if overlap >= chunkSize || overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	totalLen := len(runes)

	var chunks []string
	start := 0

	for start < totalLen {
		end := start + chunkSize
		if end >= totalLen {
			end = totalLen
		} else {
			breakPoint := lastBreak(runes, start, end)
			if breakPoint > start+chunkSize-overlap {
				end = breakPoint + 1
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == totalLen {
			break
		}
		next := end - overlap
		if next <= start {
			// A cut-back window with a large overlap can move backwards;
			// advancing past the window keeps the start strictly increasing.
			next = end
		}
		start = next
	}

	return chunks
}

// lastBreak returns the index of the rightmost '.' or '\n' in runes[start:end),
// or -1 when the window holds no natural break.
func lastBreak(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			return i
		}
	}
	return -1
}
