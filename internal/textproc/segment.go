package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// wordWindow is the fixed window size used for text with no recoverable
// punctuation.
const wordWindow = 30

var (
	structureRe = regexp.MustCompile(`[.!?\n]`)
	subSplitRe  = regexp.MustCompile(`\s*[;•]\s+`)
)

// Segment splits normalized text into an ordered sequence of non-empty
// chunk strings. Order is retrieval-significant: it feeds neighbour
// context in the overlap builder.
//
// Text containing none of ". ! ? \n" is treated as unstructured and
// split into fixed word windows. Otherwise a single pass splits on
// sentence boundaries, bullet-line starts, paragraph breaks and the
// normalizer's hard-break markers, then each piece is sub-split on
// semicolons and stray bullet glyphs.
func Segment(text string) []string {
	if !structureRe.MatchString(text) {
		return wordWindows(text, wordWindow)
	}

	var chunks []string
	for _, part := range splitBoundaries(text) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, sub := range subSplitRe.Split(part, -1) {
			sub = strings.TrimSpace(sub)
			if sub != "" {
				chunks = append(chunks, sub)
			}
		}
	}
	return chunks
}

// wordWindows re-joins whitespace-split words into fixed non-overlapping
// windows, the degraded fallback for resumes with no punctuation.
func wordWindows(text string, step int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	windows := make([]string, 0, (len(words)+step-1)/step)
	for i := 0; i < len(words); i += step {
		end := i + step
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[i:end], " "))
	}
	return windows
}

// splitBoundaries applies the composite boundary pattern in one pass,
// first match wins at each position:
//   - after a sentence terminator followed by whitespace and an
//     uppercase letter or "(";
//   - before a newline that starts a bullet line;
//   - at a run of 2+ consecutive newlines;
//   - at a hard-break marker.
func splitBoundaries(text string) []string {
	runes := []rune(text)
	var parts []string
	var cur strings.Builder

	flush := func() {
		parts = append(parts, cur.String())
		cur.Reset()
	}

	i := 0
	for i < len(runes) {
		r := runes[i]

		if r == '|' {
			flush()
			i++
			continue
		}

		if r == '\n' {
			// Paragraph break: consume the whole newline run.
			if i+1 < len(runes) && runes[i+1] == '\n' {
				flush()
				for i < len(runes) && runes[i] == '\n' {
					i++
				}
				continue
			}
			// Bullet line start: split before the newline.
			if i+1 < len(runes) && isBulletStart(runes[i+1]) {
				flush()
				i++
				continue
			}
			cur.WriteRune('\n')
			i++
			continue
		}

		if r == '.' || r == '!' || r == '?' {
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j > i+1 && j < len(runes) && (unicode.IsUpper(runes[j]) || runes[j] == '(') {
				cur.WriteRune(r)
				flush()
				i = j
				continue
			}
		}

		cur.WriteRune(r)
		i++
	}
	flush()

	return parts
}

func isBulletStart(r rune) bool {
	return r == '-' || r == '*' || r == '•'
}
