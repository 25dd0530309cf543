// Package textproc implements the resume text pipeline: normalization,
// chunk segmentation and overlap construction.
package textproc

import (
	"regexp"
	"strings"
)

// HardBreak is the marker inserted for a newline that wraps prose. The
// segmenter treats it as a chunk boundary.
const HardBreak = "|"

// minLineRun is the minimum run of characters since the previous newline
// for a lone newline to count as wrapped prose rather than a short
// structural line (list header, contact line).
const minLineRun = 10

var bulletReplacer = strings.NewReplacer(
	"•", "- ",
	"●", "- ",
	"·", "- ",
)

var (
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	newlineTrimRe = regexp.MustCompile(`\s*\n\s*`)
	hyphenWrapRe  = regexp.MustCompile(`-\s*\n\s*`)
)

// Normalize cleans raw extracted document text: canonical bullet
// markers, hard-break markers for line-wrapped prose, collapsed space
// runs, trimmed newlines and de-hyphenated word wraps. Pure and total
// on any input.
func Normalize(text string) string {
	text = bulletReplacer.Replace(text)
	text = markHardBreaks(text)
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlineTrimRe.ReplaceAllString(text, "\n")
	text = hyphenWrapRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// markHardBreaks replaces a newline with the hard-break marker when it
// is not part of a paragraph break and at least minLineRun characters
// have passed since the previous newline. Short lines keep their
// newline so structural layout survives.
func markHardBreaks(text string) string {
	if text == "" {
		return ""
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	lastNewline := -1
	for i, r := range runes {
		if r != '\n' {
			b.WriteRune(r)
			continue
		}

		nextIsNewline := i+1 < len(runes) && runes[i+1] == '\n'
		run := i - lastNewline - 1
		if run >= minLineRun && !nextIsNewline {
			b.WriteString(HardBreak)
		} else {
			b.WriteRune('\n')
		}
		lastNewline = i
	}

	return b.String()
}
