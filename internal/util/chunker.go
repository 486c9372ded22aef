package util

import (
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// ChunkText splits text into overlapping retrieval chunks. The token budget
// is approximated as four characters per token. Paragraphs (blank-line
// separated) are accumulated until the budget would be exceeded; the next
// chunk is seeded with the tail of the flushed one so retrieval does not
// lose context at chunk boundaries.
//
// A single paragraph larger than the budget is split on sentence boundaries
// instead, and those chunks carry no overlap. The asymmetry is inherited
// behavior the rest of the system depends on; do not unify the two paths
// without checking retrieval quality downstream.
func ChunkText(text string, maxTokens, overlap int) []string {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	maxChars := maxTokens * 4
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	out := make([]string, 0)
	current := ""
	for _, para := range splitParagraphs(text) {
		if len(para) >= maxChars {
			if strings.TrimSpace(current) != "" {
				out = append(out, strings.TrimSpace(current))
				current = ""
			}
			out = append(out, chunkBySentence(para, maxChars)...)
			continue
		}
		if len(current)+len(para) < maxChars {
			if current == "" {
				current = para
			} else {
				current = current + "\n\n" + para
			}
			continue
		}
		flushed := strings.TrimSpace(current)
		if flushed != "" {
			out = append(out, flushed)
		}
		current = tail(flushed, overlap) + "\n\n" + para
	}
	if strings.TrimSpace(current) != "" {
		out = append(out, strings.TrimSpace(current))
	}
	if len(out) == 0 {
		out = append(out, text)
	}
	return out
}

func splitParagraphs(text string) []string {
	parts := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func chunkBySentence(para string, maxChars int) []string {
	locs := sentenceBoundary.FindAllStringIndex(para, -1)
	sentences := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		sentences = append(sentences, strings.TrimSpace(para[prev:loc[1]]))
		prev = loc[1]
	}
	if prev < len(para) {
		sentences = append(sentences, strings.TrimSpace(para[prev:]))
	}

	out := make([]string, 0)
	current := ""
	for _, s := range sentences {
		if s == "" {
			continue
		}
		if len(current)+len(s) < maxChars {
			if current == "" {
				current = s
			} else {
				current = current + " " + s
			}
			continue
		}
		if current != "" {
			out = append(out, current)
		}
		current = s
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// tail returns the last n characters of s, on rune boundaries.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
