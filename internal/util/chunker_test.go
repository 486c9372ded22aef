package util

import (
	"strings"
	"testing"
)

func TestChunkTextSmallInputSingleChunk(t *testing.T) {
	chunks := ChunkText("A short exam instruction paragraph.", 1000, 150)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short exam instruction paragraph." {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	if got := ChunkText("   \n\n  ", 1000, 150); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestChunkTextParagraphOverlap(t *testing.T) {
	para := strings.Repeat("The committee reviews each submitted answer sheet in order. ", 3)
	para = strings.TrimSpace(para)
	text := strings.Repeat(para+"\n\n", 10)

	// maxTokens 100 -> 400 char budget, paragraphs ~180 chars.
	overlap := 50
	chunks := ChunkText(text, 100, overlap)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 400+overlap+2 {
			t.Fatalf("chunk %d exceeds budget: %d chars", i, len(c))
		}
	}
	for i := 0; i < len(chunks)-1; i++ {
		carried := strings.TrimSpace(tail(chunks[i], overlap))
		if !strings.Contains(chunks[i+1], carried) {
			t.Fatalf("chunk %d does not carry the tail of chunk %d", i+1, i)
		}
	}
	// Nothing lost: every paragraph appears somewhere.
	joined := strings.Join(chunks, "\n")
	if !strings.Contains(joined, para) {
		t.Fatal("paragraph content missing from chunk output")
	}
}

func TestChunkTextSentenceFallbackNoOverlap(t *testing.T) {
	sentence := "The heart pumps oxygenated blood through the arterial system."
	parts := make([]string, 40)
	for i := range parts {
		parts[i] = sentence
	}
	text := strings.Join(parts, " ")

	chunks := ChunkText(text, 100, 150)
	if len(chunks) < 2 {
		t.Fatalf("expected sentence fallback to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 400 {
			t.Fatalf("sentence-fallback chunk %d exceeds budget: %d", i, len(c))
		}
	}
	// Sentence-path chunks carry no overlap, so rejoining reproduces the
	// input exactly.
	if got := strings.Join(chunks, " "); got != text {
		t.Fatalf("round trip mismatch:\n got %d chars\nwant %d chars", len(got), len(text))
	}
}

func TestChunkTextAlwaysReturnsAChunk(t *testing.T) {
	inputs := []string{"x", "One line only", strings.Repeat("word ", 5000)}
	for _, in := range inputs {
		if chunks := ChunkText(in, 1000, 150); len(chunks) == 0 {
			t.Fatalf("no chunks for input of %d chars", len(in))
		}
	}
}
