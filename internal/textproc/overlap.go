package textproc

import "strings"

// Overlap expands each chunk into a 3-chunk sliding window joined with
// single spaces: previous + current + next, skipping absent neighbours.
// The result is index-aligned 1:1 with the input sequence.
func Overlap(chunks []string) []string {
	overlapping := make([]string, len(chunks))
	for i, cur := range chunks {
		parts := make([]string, 0, 3)
		if i > 0 {
			parts = append(parts, chunks[i-1])
		}
		parts = append(parts, cur)
		if i < len(chunks)-1 {
			parts = append(parts, chunks[i+1])
		}
		overlapping[i] = strings.Join(parts, " ")
	}
	return overlapping
}
