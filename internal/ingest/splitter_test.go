package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitter_KeepsShortTextWhole(t *testing.T) {
	s := NewSplitter(1000, 200)

	got := s.Split("Hello, world.")
	want := []string{"Hello, world."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitter_EmptyInput(t *testing.T) {
	s := NewSplitter(1000, 200)

	if got := s.Split(""); got != nil {
		t.Errorf("expected nil for empty input, got %q", got)
	}
	if got := s.Split("  \n \n "); got != nil {
		t.Errorf("expected nil for whitespace input, got %q", got)
	}
}

func TestSplitter_SplitsOnParagraphs(t *testing.T) {
	s := NewSplitter(12, 0)

	got := s.Split("aaa bbb\n\nccc ddd")
	want := []string{"aaa bbb", "ccc ddd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitter_OverlapCarriesContext(t *testing.T) {
	s := NewSplitter(15, 7)

	got := s.Split("aa bb cc dd ee ff")
	want := []string{"aa bb cc dd ee", "dd ee ff"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitter_RecursesIntoOversizedParagraph(t *testing.T) {
	s := NewSplitter(25, 0)

	got := s.Split("para one here.\n\npara two is much longer here.")
	want := []string{"para one here.", "para two is much longer", "here."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitter_CharacterFallback(t *testing.T) {
	// No separator occurs in the text at all, so the splitter falls back
	// to cutting at the size limit.
	s := NewSplitter(10, 0)

	got := s.Split("0123456789012345")
	want := []string{"0123456789", "012345"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitter_ChunksStayWithinSize(t *testing.T) {
	s := NewSplitter(50, 10)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	for i, chunk := range s.Split(text) {
		if len(chunk) > 50 {
			t.Errorf("chunk[%d] has %d bytes, expected at most 50: %q", i, len(chunk), chunk)
		}
		if chunk == "" {
			t.Errorf("chunk[%d] is empty", i)
		}
	}
}

func TestSplitter_DefaultsOnBadConfig(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.chunkSize != 1000 {
		t.Errorf("expected chunk size 1000, got %d", s.chunkSize)
	}
	if s.chunkOverlap != 200 {
		t.Errorf("expected overlap 200, got %d", s.chunkOverlap)
	}

	s = NewSplitter(100, 100)
	if s.chunkOverlap != 20 {
		t.Errorf("expected overlap clamped to 20, got %d", s.chunkOverlap)
	}
}

func TestSplitSections(t *testing.T) {
	content := "Intro text.\n\n## Skills\n\nGo, Python.\n\n## Projects\nBot.\n"

	sections := SplitSections(content)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	want := []Section{
		{Title: "Introduction", Content: "# Introduction\n\nIntro text."},
		{Title: "Skills", Content: "# Skills\n\nGo, Python."},
		{Title: "Projects", Content: "# Projects\n\nBot."},
	}
	for i, sec := range sections {
		if sec != want[i] {
			t.Errorf("section[%d]: expected %+v, got %+v", i, want[i], sec)
		}
	}
}

func TestSplitSections_NoHeaders(t *testing.T) {
	sections := SplitSections("just text")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "Introduction" {
		t.Errorf("expected title Introduction, got %q", sections[0].Title)
	}
}

func TestSplitSections_DropsEmptySections(t *testing.T) {
	sections := SplitSections("## A\n## B\nbody")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "B" {
		t.Errorf("expected title B, got %q", sections[0].Title)
	}
}

func TestSplitSections_TrimsHeaderTitle(t *testing.T) {
	sections := SplitSections("## Spaced   \ntext")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "Spaced" {
		t.Errorf("expected title Spaced, got %q", sections[0].Title)
	}
}

func TestSplitSections_Empty(t *testing.T) {
	if got := SplitSections(""); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
