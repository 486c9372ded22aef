package questions

import "testing"

func validCandidate() Candidate {
	return Candidate{
		Stem:          "A 45-year-old patient presents with progressive dyspnea on exertion. Which finding is most likely?",
		OptionA:       "Pleural effusion",
		OptionB:       "Pericardial tamponade",
		OptionC:       "Pulmonary embolism",
		OptionD:       "Chronic bronchitis",
		CorrectOption: "C",
		Explanation:   "Progressive exertional dyspnea with this history suggests embolism.",
		SubjectArea:   "Pulmonology",
	}
}

func noExisting(string) bool { return false }

func TestValidateAccepts(t *testing.T) {
	v := Validate(validCandidate(), noExisting)
	if v.Outcome != Accepted {
		t.Fatalf("expected accept, got %s (%s)", v.Outcome, v.Reason)
	}
	if v.Candidate.CorrectOption != "C" {
		t.Fatalf("correct option mangled: %s", v.Candidate.CorrectOption)
	}
}

func TestValidateRejectsShortStem(t *testing.T) {
	c := validCandidate()
	c.Stem = "Too short to be a stem?"
	v := Validate(c, noExisting)
	if v.Outcome != Rejected || v.Reason != ReasonShortStem {
		t.Fatalf("expected short-stem reject, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateRejectsLowercaseFragment(t *testing.T) {
	c := validCandidate()
	c.Stem = "which of the following is the most appropriate management option?"
	v := Validate(c, noExisting)
	if v.Outcome != Rejected || v.Reason != ReasonTruncatedStem {
		t.Fatalf("expected truncated-stem reject, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateDigitStemExempt(t *testing.T) {
	c := validCandidate()
	c.Stem = "32-year-old woman admitted with fever and a new cardiac murmur, what is indicated?"
	if v := Validate(c, noExisting); v.Outcome != Accepted {
		t.Fatalf("digit-opening stem should pass, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateRejectsMissingOption(t *testing.T) {
	c := validCandidate()
	c.OptionD = "  "
	v := Validate(c, noExisting)
	if v.Outcome != Rejected || v.Reason != ReasonMissingOptions {
		t.Fatalf("expected missing-options reject, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateOptionEOptional(t *testing.T) {
	c := validCandidate()
	c.OptionE = ""
	if v := Validate(c, noExisting); v.Outcome != Accepted {
		t.Fatalf("absent option E should be fine, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateNearDuplicateOptions(t *testing.T) {
	c := validCandidate()
	c.OptionA = "Administer drug X immediately."
	c.OptionB = "administer drug x immediately"
	v := Validate(c, noExisting)
	if v.Outcome != Rejected || v.Reason != ReasonSimilarOptions {
		t.Fatalf("case/punctuation variants should be similar, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateDistinctOptionsNotSimilar(t *testing.T) {
	c := validCandidate()
	c.OptionA = "Administer drug X immediately to reduce risk."
	c.OptionB = "Administer drug Y to reduce risk."
	if v := Validate(c, noExisting); v.Outcome != Accepted {
		t.Fatalf("distinct options flagged as similar: %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateSkipsDuplicateStem(t *testing.T) {
	c := validCandidate()
	v := Validate(c, func(stem string) bool { return stem == c.Stem })
	if v.Outcome != Skipped || v.Reason != ReasonDuplicateStem {
		t.Fatalf("expected duplicate-stem skip, got %s (%s)", v.Outcome, v.Reason)
	}
}

func TestValidateDeterministic(t *testing.T) {
	c := validCandidate()
	c.OptionC = "Pleural effusion"
	first := Validate(c, noExisting)
	second := Validate(c, noExisting)
	if first.Outcome != second.Outcome || first.Reason != second.Reason {
		t.Fatalf("verdicts differ: %v vs %v", first, second)
	}
}

func TestNormalizeCorrectOption(t *testing.T) {
	cases := []struct {
		raw  string
		hasE bool
		want string
	}{
		{"c.", true, "C"},
		{"", true, "A"},
		{"Z", true, "A"},
		{"E", false, "A"},
		{"E", true, "E"},
		{"b", false, "B"},
		{"AB", false, "A"},
	}
	for _, tc := range cases {
		if got := NormalizeCorrectOption(tc.raw, tc.hasE); got != tc.want {
			t.Fatalf("NormalizeCorrectOption(%q, %v) = %q, want %q", tc.raw, tc.hasE, got, tc.want)
		}
	}
}
