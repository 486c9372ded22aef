package questions

import (
	"strings"

	"exambank/internal/models"
)

// Flagged is a persisted record the audit wants repaired, with the first
// rule it tripped.
type Flagged struct {
	Record models.QuestionRecord
	Reason string
}

// Audit re-applies the detection heuristics to an already persisted
// record. This is an independent second pass over stored rows, not a reuse
// of the validator's in-memory rejection state: a record may have been
// written by an earlier, laxer version of the rules.
func Audit(q models.QuestionRecord) (string, bool) {
	stem := strings.TrimSpace(q.Stem)
	if len(stem) < MinStemLength {
		return ReasonShortStem, true
	}
	if stemLooksTruncated(stem) {
		return ReasonTruncatedStem, true
	}
	if hasMissingOptions(q.OptionA, q.OptionB, q.OptionC, q.OptionD) {
		return ReasonMissingOptions, true
	}
	opts := []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
	if strings.TrimSpace(q.OptionE) != "" {
		opts = append(opts, q.OptionE)
	}
	if hasSimilarOptions(opts) {
		return ReasonSimilarOptions, true
	}
	return "", false
}

// AuditAll returns the flagged subset of a document's records, in order.
func AuditAll(records []models.QuestionRecord) []Flagged {
	out := make([]Flagged, 0)
	for _, q := range records {
		if reason, bad := Audit(q); bad {
			out = append(out, Flagged{Record: q, Reason: reason})
		}
	}
	return out
}

// BatchFlagged splits flagged records into repair batches of the given
// size, preserving order.
func BatchFlagged(flagged []Flagged, size int) [][]Flagged {
	if size <= 0 {
		size = 3
	}
	out := make([][]Flagged, 0, (len(flagged)+size-1)/size)
	for i := 0; i < len(flagged); i += size {
		end := i + size
		if end > len(flagged) {
			end = len(flagged)
		}
		out = append(out, flagged[i:end])
	}
	return out
}

// ApplyFix overwrites only the fields the model supplied; everything else,
// including the correct option, keeps its stored value.
func ApplyFix(q models.QuestionRecord, f Fix) models.QuestionRecord {
	if f.Stem != nil {
		q.Stem = *f.Stem
	}
	if f.OptionA != nil {
		q.OptionA = *f.OptionA
	}
	if f.OptionB != nil {
		q.OptionB = *f.OptionB
	}
	if f.OptionC != nil {
		q.OptionC = *f.OptionC
	}
	if f.OptionD != nil {
		q.OptionD = *f.OptionD
	}
	if f.OptionE != nil {
		q.OptionE = *f.OptionE
	}
	if f.Explanation != nil {
		q.Explanation = *f.Explanation
	}
	if f.SubjectArea != nil {
		q.SubjectArea = *f.SubjectArea
	}
	return q
}
