// internal/validators/dictionary.go
package validators

import "strings"

// knownMisspellings maps frequent generation typos in mortgage marketing
// copy to their corrections. The spelling validator flags any hit that is
// not whitelisted as a domain term.
var knownMisspellings = map[string]string{
	"mortage":     "mortgage",
	"morgage":     "mortgage",
	"morgate":     "mortgage",
	"intrest":     "interest",
	"interst":     "interest",
	"finacing":    "financing",
	"financeing":  "financing",
	"refinace":    "refinance",
	"refinancne":  "refinance",
	"aproval":     "approval",
	"approvel":    "approval",
	"qualifed":    "qualified",
	"quailfied":   "qualified",
	"guarentee":   "guarantee",
	"garantee":    "guarantee",
	"lisence":     "license",
	"licence":     "license",
	"porperty":    "property",
	"propery":     "property",
	"purchse":     "purchase",
	"purchace":    "purchase",
	"payement":    "payment",
	"paymnet":     "payment",
	"percant":     "percent",
	"precent":     "percent",
	"homne":       "home",
	"hom":         "home",
	"loann":       "loan",
	"lener":       "lender",
	"lendor":      "lender",
	"eqiuty":      "equity",
	"equtiy":      "equity",
	"insurence":   "insurance",
	"insurnace":   "insurance",
	"apraised":    "appraised",
	"appraissal":  "appraisal",
	"closng":      "closing",
	"clossing":    "closing",
	"escorw":      "escrow",
	"pre-aproved": "pre-approved",
}

// tokenizeWords splits copy into lowercase word tokens, stripping common
// punctuation that OCR leaves attached.
func tokenizeWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', ',', '.', '!', '?', ';', ':', '"', '(', ')', '[', ']':
			return true
		}
		return false
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
