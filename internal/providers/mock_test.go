package providers

import (
	"context"
	"strings"
	"testing"
)

func TestMockEmbedDeterministic(t *testing.T) {
	m := NewMockProvider(8)
	req := EmbedRequest{Operation: "index", Inputs: []string{"alpha", "beta"}}

	first, _, err := m.Embed(context.Background(), req)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, _, err := m.Embed(context.Background(), req)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(first) != 2 || len(first[0]) != 8 {
		t.Fatalf("unexpected shape: %d vectors of %d dims", len(first), len(first[0]))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatal("same input must embed identically")
		}
	}
	diff := false
	for i := range first[0] {
		if first[0][i] != first[1][i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Fatal("distinct inputs embedded identically")
	}
}

func TestMockCompleteByOperation(t *testing.T) {
	m := NewMockProvider(0)
	extract, _, err := m.Complete(context.Background(), CompletionRequest{Operation: "extract_questions"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(extract.Text, `"questions"`) {
		t.Fatalf("extract operation should return a questions envelope: %q", extract.Text)
	}
	repair, _, err := m.Complete(context.Background(), CompletionRequest{Operation: "repair_questions"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(repair.Text, `"fixes"`) {
		t.Fatalf("repair operation should return a fixes envelope: %q", repair.Text)
	}
}
