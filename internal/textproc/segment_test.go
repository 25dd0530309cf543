package textproc

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestSegment_SentenceBoundaries(t *testing.T) {
	got := Segment("I built systems. Then I led teams.")
	want := []string{"I built systems.", "Then I led teams."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_TerminatorBeforeLowercaseDoesNotSplit(t *testing.T) {
	got := Segment("worked at inc. and elsewhere.\n")
	want := []string{"worked at inc. and elsewhere."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_TerminatorBeforeParenSplits(t *testing.T) {
	got := Segment("Shipped the product. (2021) Later promoted.")
	want := []string{"Shipped the product.", "(2021) Later promoted."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_HardBreakMarker(t *testing.T) {
	got := Segment("first wrapped line|second wrapped line\n")
	want := []string{"first wrapped line", "second wrapped line"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_ParagraphBreaks(t *testing.T) {
	got := Segment("first paragraph here\n\n\nsecond paragraph here")
	want := []string{"first paragraph here", "second paragraph here"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_BulletLines(t *testing.T) {
	got := Segment("Skills:\n- Go\n- Python")
	want := []string{"Skills:", "- Go", "- Python"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_SemicolonSubSplit(t *testing.T) {
	got := Segment("Go; Python; Rust\n")
	want := []string{"Go", "Python", "Rust"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegment_NoStructureUsesWordWindows(t *testing.T) {
	// 34 words, no punctuation: two windows of 30 and 4 words.
	words := make([]string, 34)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	got := Segment(strings.Join(words, " "))

	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	if n := len(strings.Fields(got[0])); n != 30 {
		t.Errorf("expected first window of 30 words, got %d", n)
	}
	if n := len(strings.Fields(got[1])); n != 4 {
		t.Errorf("expected second window of 4 words, got %d", n)
	}
	if got[1] != "word30 word31 word32 word33" {
		t.Errorf("unexpected second window: %q", got[1])
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	if got := Segment(""); len(got) != 0 {
		t.Errorf("expected no chunks, got %v", got)
	}
}

func TestSegment_NoEmptyChunks(t *testing.T) {
	got := Segment("|| one sentence. \n\n  \n- bullet\n")
	for i, c := range got {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestOverlap_ThreeChunkWindows(t *testing.T) {
	got := Overlap([]string{"a", "b", "c"})
	want := []string{"a b", "a b c", "b c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOverlap_SingleChunk(t *testing.T) {
	got := Overlap([]string{"only"})
	want := []string{"only"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOverlap_PreservesLength(t *testing.T) {
	chunks := []string{"a", "b", "c", "d", "e"}
	if got := Overlap(chunks); len(got) != len(chunks) {
		t.Errorf("expected %d windows, got %d", len(chunks), len(got))
	}
}

func TestOverlap_Empty(t *testing.T) {
	if got := Overlap(nil); len(got) != 0 {
		t.Errorf("expected no windows, got %v", got)
	}
}
