package questions

import (
	"fmt"
	"strings"

	"exambank/internal/models"
)

const extractionSystem = `You are an exam content specialist. You read exam documents and study material and produce multiple-choice questions as strict JSON. Respond with JSON only, no prose and no code fences.`

const repairSystem = `You are an exam content editor. You repair defective multiple-choice questions while preserving their meaning and their answer key. Respond with JSON only, no prose and no code fences.`

// ExtractionPrompt builds the system+user pair for pulling questions out
// of a document. Exam sources are transcribed verbatim; study material is
// turned into new questions.
func ExtractionPrompt(category, text string, maxQuestions int) (string, string) {
	mode := "The source below is study material. Write new multiple-choice questions that test its key points."
	if category == models.CategoryExam {
		mode = "The source below is an exam. Extract the existing questions verbatim, including any clinical vignette or scenario that precedes the question."
	}
	user := fmt.Sprintf(`%s

Rules:
- Return at most %d questions.
- Each question needs a complete stem: copy the full text including any preceding vignette, never a fragment.
- Each question needs options option_a through option_d; option_e only when the source has five options.
- Options must be substantively distinct from each other.
- Distribute correct answers across the letters A-E; do not cluster them on one letter.
- Each question needs an explanation of the correct answer and a subject_area.
- Output exactly: {"questions": [{"stem": "...", "option_a": "...", "option_b": "...", "option_c": "...", "option_d": "...", "option_e": "...", "correct_option": "A", "explanation": "...", "subject_area": "..."}]}

Source:
%s`, mode, maxQuestions, text)
	return extractionSystem, user
}

// RepairPrompt builds the system+user pair for one repair batch. Each
// record carries the audit reason; grounding excerpts from the source
// document keep the repair anchored to the original text.
func RepairPrompt(batch []Flagged, grounding []string) (string, string) {
	var b strings.Builder
	b.WriteString("Repair the defective questions below. For each one, return its index and only the fields you changed. Never change correct_option.\n")
	b.WriteString(`Output exactly: {"fixes": [{"index": 0, "stem": "...", "option_a": "..."}]}` + "\n\n")
	if len(grounding) > 0 {
		b.WriteString("Source excerpts:\n")
		for _, g := range grounding {
			b.WriteString(g)
			b.WriteString("\n---\n")
		}
		b.WriteString("\n")
	}
	for i, f := range batch {
		q := f.Record
		fmt.Fprintf(&b, "Question %d (defect: %s):\n", i, f.Reason)
		fmt.Fprintf(&b, "stem: %s\n", q.Stem)
		fmt.Fprintf(&b, "option_a: %s\noption_b: %s\noption_c: %s\noption_d: %s\n", q.OptionA, q.OptionB, q.OptionC, q.OptionD)
		if strings.TrimSpace(q.OptionE) != "" {
			fmt.Fprintf(&b, "option_e: %s\n", q.OptionE)
		}
		fmt.Fprintf(&b, "correct_option: %s\nexplanation: %s\n\n", q.CorrectOption, q.Explanation)
	}
	return repairSystem, b.String()
}

// TruncateForPrompt bounds the text sent to the model. Oversized input is
// cut at the last sentence boundary before 80% of the budget so a question
// is not sliced mid-sentence.
func TruncateForPrompt(text string, budget int) string {
	if budget <= 0 || len(text) <= budget {
		return text
	}
	cut := budget * 80 / 100
	r := []rune(text)
	if cut > len(r) {
		cut = len(r)
	}
	head := string(r[:cut])
	best := -1
	for _, p := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if i := strings.LastIndex(head, p); i > best {
			best = i
		}
	}
	if best > 0 {
		return strings.TrimSpace(head[:best+1])
	}
	return strings.TrimSpace(head)
}
