package questions

import (
	"strings"
	"unicode"
)

// MinStemLength is the shortest stem accepted by the rule engine.
const MinStemLength = 30

type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
	Skipped  Outcome = "skipped"
)

// Rejection reasons, also used as audit tags by the repair pass.
const (
	ReasonShortStem      = "stem_too_short"
	ReasonTruncatedStem  = "stem_truncated"
	ReasonMissingOptions = "missing_options"
	ReasonSimilarOptions = "similar_options"
	ReasonDuplicateStem  = "duplicate_stem"
)

type Verdict struct {
	Outcome   Outcome
	Reason    string
	Candidate Candidate
}

// Validate applies the quality rules in order; the first failure decides.
// Duplicate stems are skipped rather than rejected so they do not count
// against the batch. Accepted candidates come back with a normalized
// correct option. Pure: same candidate and stem set, same verdict.
func Validate(c Candidate, stemExists func(string) bool) Verdict {
	c.Stem = strings.TrimSpace(c.Stem)
	if len(c.Stem) < MinStemLength {
		return Verdict{Outcome: Rejected, Reason: ReasonShortStem, Candidate: c}
	}
	if stemLooksTruncated(c.Stem) {
		return Verdict{Outcome: Rejected, Reason: ReasonTruncatedStem, Candidate: c}
	}
	if hasMissingOptions(c.OptionA, c.OptionB, c.OptionC, c.OptionD) {
		return Verdict{Outcome: Rejected, Reason: ReasonMissingOptions, Candidate: c}
	}
	if hasSimilarOptions(presentOptions(c)) {
		return Verdict{Outcome: Rejected, Reason: ReasonSimilarOptions, Candidate: c}
	}
	if stemExists != nil && stemExists(c.Stem) {
		return Verdict{Outcome: Skipped, Reason: ReasonDuplicateStem, Candidate: c}
	}
	c.CorrectOption = NormalizeCorrectOption(c.CorrectOption, strings.TrimSpace(c.OptionE) != "")
	return Verdict{Outcome: Accepted, Candidate: c}
}

// stemLooksTruncated flags stems whose first alphabetic character is
// lowercase, the usual sign of a fragment cut from a longer sentence.
// Stems that open with a digit (numbered vignettes, lab values) are exempt.
func stemLooksTruncated(stem string) bool {
	for _, r := range stem {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			return unicode.IsLower(r)
		}
	}
	return false
}

func hasMissingOptions(opts ...string) bool {
	for _, o := range opts {
		if strings.TrimSpace(o) == "" {
			return true
		}
	}
	return false
}

func presentOptions(c Candidate) []string {
	opts := []string{c.OptionA, c.OptionB, c.OptionC, c.OptionD}
	if strings.TrimSpace(c.OptionE) != "" {
		opts = append(opts, c.OptionE)
	}
	return opts
}

func hasSimilarOptions(opts []string) bool {
	norm := make([]string, len(opts))
	for i, o := range opts {
		norm[i] = normalizeOption(o)
	}
	for i := 0; i < len(norm); i++ {
		for j := i + 1; j < len(norm); j++ {
			if optionsSimilar(norm[i], norm[j]) {
				return true
			}
		}
	}
	return false
}

func normalizeOption(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, ".!?,;: ")
}

// optionsSimilar reports near-duplicates: identical after normalization,
// or the shorter option's first 80% (by characters) contained in the
// longer one.
func optionsSimilar(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	if a == b {
		return true
	}
	shorter, longer := a, b
	if len([]rune(b)) < len([]rune(a)) {
		shorter, longer = b, a
	}
	r := []rune(shorter)
	prefix := string(r[:len(r)*80/100])
	if prefix == "" {
		return false
	}
	return strings.Contains(longer, prefix)
}

// NormalizeCorrectOption reduces the model's answer letter to one of A-E.
// Anything that does not strip down to exactly one letter defaults to "A",
// as does "E" when no option E exists. The "A" fallback skews the answer
// distribution and is kept as a compatibility contract.
func NormalizeCorrectOption(raw string, hasOptionE bool) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r >= 'A' && r <= 'E' {
			b.WriteRune(r)
		}
	}
	letter := b.String()
	if len(letter) != 1 {
		return "A"
	}
	if letter == "E" && !hasOptionE {
		return "A"
	}
	return letter
}
