package questions

import (
	"testing"

	"exambank/internal/models"
)

func storedQuestion(id string) models.QuestionRecord {
	return models.QuestionRecord{
		QuestionID:    id,
		DocumentID:    "doc-1",
		Stem:          "A 60-year-old man with long-standing hypertension presents with sudden tearing chest pain. What is the diagnosis?",
		OptionA:       "Aortic dissection",
		OptionB:       "Acute pancreatitis",
		OptionC:       "Tension pneumothorax",
		OptionD:       "Esophageal rupture",
		CorrectOption: "A",
		Explanation:   "Tearing pain with hypertension history points to dissection.",
	}
}

func TestAuditCleanRecord(t *testing.T) {
	if reason, bad := Audit(storedQuestion("q1")); bad {
		t.Fatalf("clean record flagged: %s", reason)
	}
}

func TestAuditFlagsDefects(t *testing.T) {
	short := storedQuestion("q1")
	short.Stem = "Diagnosis?"
	truncated := storedQuestion("q2")
	truncated.Stem = "presents with sudden tearing chest pain, what is the diagnosis?"
	missing := storedQuestion("q3")
	missing.OptionC = ""
	similar := storedQuestion("q4")
	similar.OptionB = "aortic dissection."

	cases := []struct {
		rec  models.QuestionRecord
		want string
	}{
		{short, ReasonShortStem},
		{truncated, ReasonTruncatedStem},
		{missing, ReasonMissingOptions},
		{similar, ReasonSimilarOptions},
	}
	for _, tc := range cases {
		reason, bad := Audit(tc.rec)
		if !bad || reason != tc.want {
			t.Fatalf("expected %s, got flagged=%v reason=%s", tc.want, bad, reason)
		}
	}
}

func TestAuditAllPreservesOrder(t *testing.T) {
	bad1 := storedQuestion("q1")
	bad1.Stem = "Too short?"
	good := storedQuestion("q2")
	bad2 := storedQuestion("q3")
	bad2.OptionD = ""

	flagged := AuditAll([]models.QuestionRecord{bad1, good, bad2})
	if len(flagged) != 2 {
		t.Fatalf("expected 2 flagged, got %d", len(flagged))
	}
	if flagged[0].Record.QuestionID != "q1" || flagged[1].Record.QuestionID != "q3" {
		t.Fatalf("order not preserved: %s, %s", flagged[0].Record.QuestionID, flagged[1].Record.QuestionID)
	}
}

func TestBatchFlagged(t *testing.T) {
	flagged := make([]Flagged, 7)
	batches := BatchFlagged(flagged, 3)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 3 || len(batches[2]) != 1 {
		t.Fatalf("unexpected batch sizes: %d, %d", len(batches[0]), len(batches[2]))
	}
}

// A repair response covering only part of a batch must leave the other
// records untouched, and supplied fixes overwrite only supplied fields.
func TestApplyFixSelectiveOverwrite(t *testing.T) {
	original := storedQuestion("q1")
	newStem := "A 60-year-old man with long-standing hypertension presents with sudden tearing chest pain radiating to the back. What is the most likely diagnosis?"
	idx := 0
	fix := Fix{Index: &idx, Stem: &newStem}

	updated := ApplyFix(original, fix)
	if updated.Stem != newStem {
		t.Fatal("stem not overwritten")
	}
	if updated.OptionA != original.OptionA || updated.Explanation != original.Explanation {
		t.Fatal("unsupplied fields must keep stored values")
	}
	if updated.CorrectOption != original.CorrectOption {
		t.Fatal("correct option must never change")
	}
}

func TestApplyFixEmptyStringIsSupplied(t *testing.T) {
	original := storedQuestion("q1")
	empty := ""
	idx := 0
	updated := ApplyFix(original, Fix{Index: &idx, OptionE: &empty})
	if updated.OptionE != "" {
		t.Fatalf("explicit empty option_e should clear the field, got %q", updated.OptionE)
	}
}
