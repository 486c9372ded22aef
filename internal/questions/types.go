// Package questions holds the question-bank domain logic: extraction
// prompts, model-output parsing, the quality rule engine, and the
// audit-and-repair pass. Everything here is pure; persistence and provider
// calls stay with the caller.
package questions

// Candidate is one question as proposed by the model, before validation.
type Candidate struct {
	Stem          string `json:"stem"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	OptionE       string `json:"option_e,omitempty"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
	SubjectArea   string `json:"subject_area"`
}

// Fix is the model's repair for one record of a batch, keyed by position.
// Pointer fields distinguish "not supplied" from "supplied empty"; omitted
// fields keep their stored value.
type Fix struct {
	Index       *int    `json:"index"`
	Stem        *string `json:"stem,omitempty"`
	OptionA     *string `json:"option_a,omitempty"`
	OptionB     *string `json:"option_b,omitempty"`
	OptionC     *string `json:"option_c,omitempty"`
	OptionD     *string `json:"option_d,omitempty"`
	OptionE     *string `json:"option_e,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
	SubjectArea *string `json:"subject_area,omitempty"`
}
