package activities

import (
	"path/filepath"
	"regexp"
	"strings"
)

// organizationKeywords maps filename fragments to the issuing organization.
// The longest match wins so "sus-sp" beats "sus". New sources only need a
// row here.
var organizationKeywords = map[string]string{
	"enare":    "ENARE",
	"enade":    "ENADE",
	"usp":      "USP",
	"unicamp":  "UNICAMP",
	"unifesp":  "UNIFESP",
	"ufrj":     "UFRJ",
	"sus":      "SUS",
	"sus-sp":   "SUS-SP",
	"einstein": "Einstein",
	"sirio":    "Sírio-Libanês",
}

const defaultOrganization = "Outras"

var yearPattern = regexp.MustCompile(`20\d{2}`)

// titleFromFilename derives the dedup title: base name without extension,
// separators normalized to spaces.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

func inferOrganization(filename string) string {
	lower := strings.ToLower(filename)
	best := ""
	for keyword := range organizationKeywords {
		if strings.Contains(lower, keyword) && len(keyword) > len(best) {
			best = keyword
		}
	}
	if best == "" {
		return defaultOrganization
	}
	return organizationKeywords[best]
}

func inferYear(filename string, fallback int) int {
	if m := yearPattern.FindString(filename); m != "" {
		year := 0
		for _, r := range m {
			year = year*10 + int(r-'0')
		}
		return year
	}
	return fallback
}
