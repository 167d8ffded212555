package chunker

import (
	"strings"
	"testing"
)

func TestSplit_BlankInput(t *testing.T) {
	s := New(1000, 200)

	for _, input := range []string{"", "   ", "\n\t  \n"} {
		if chunks := s.Split(input); chunks != nil {
			t.Errorf("Split(%q) = %v, want nil", input, chunks)
		}
	}
}

func TestSplit_FitsInOneChunk(t *testing.T) {
	s := New(1000, 200)
	text := "Stockholm is the capital of Sweden. It is built on fourteen islands."

	chunks := s.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q, want %q", chunks[0], text)
	}
}

func TestSplit_NormalizesWhitespace(t *testing.T) {
	s := New(1000, 200)

	chunks := s.Split("Hello   world.\n\nSecond\tsentence.")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "Hello world. Second sentence." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplit_RespectsBudget(t *testing.T) {
	s := New(100, 20)

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}

	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		// Budget plus one overlapping tail and separator.
		if len(c) > 100+20+1 {
			t.Errorf("chunk %d exceeds budget: %d chars", i, len(c))
		}
	}
}

func TestSplit_OverlapCarriesTail(t *testing.T) {
	s := New(60, 20)

	chunks := s.Split("First sentence goes here okay. Second sentence goes here too. Third sentence ends the text.")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each subsequent chunk starts with the tail of the previous one.
	prevTail := chunks[0][len(chunks[0])-20:]
	if !strings.HasPrefix(chunks[1], prevTail) {
		t.Errorf("chunk 1 %q does not start with previous tail %q", chunks[1], prevTail)
	}
}

func TestSplit_NoTerminators(t *testing.T) {
	s := New(1000, 200)

	chunks := s.Split("a fragment with no sentence ending punctuation")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestNew_DefaultsOnInvalidInput(t *testing.T) {
	s := New(0, -1)
	if s.size != DefaultChunkSize || s.overlap != DefaultOverlap {
		t.Errorf("got size=%d overlap=%d, want defaults", s.size, s.overlap)
	}
}
