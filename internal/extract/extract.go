// Package extract turns uploaded bytes into normalized document text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"exambank/internal/util"

	"github.com/ledongthuc/pdf"
)

// MinReadableChars is the threshold below which a document is classified
// as an image-only scan with no extractable text.
const MinReadableChars = 50

var whitespaceRun = regexp.MustCompile(`[ \t\r\f]+`)

// Text extracts and normalizes the text of a single PDF. Documents whose
// collapsed text is shorter than MinReadableChars yield
// util.ErrNoExtractableText; callers treat that as a per-file warning,
// never a batch failure.
func Text(raw []byte) (string, error) {
	text, err := pdfPlainText(raw)
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	text = Normalize(text)
	if len(text) < MinReadableChars {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

func pdfPlainText(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Normalize collapses whitespace runs, strips control characters that
// Postgres text columns reject (NUL from some PDF extractors), and trims.
// Newlines survive so paragraph boundaries remain visible to the chunker.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	s = whitespaceRun.ReplaceAllString(string(r), " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// UnreadableWarning is the user-facing message for an image-only file.
func UnreadableWarning(filename string) string {
	return fmt.Sprintf("file %q has no extractable text (image-only scan?); skipped", filename)
}
