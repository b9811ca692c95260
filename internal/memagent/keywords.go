package memagent

import "strings"

// KeywordExtractor pulls candidate entity-search terms out of user
// input. Non-English deployments inject a dictionary or statistical
// tokenizer in place of DefaultKeywordExtractor.
type KeywordExtractor func(text string) []string

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "to": true, "of": true, "in": true,
	"on": true, "at": true, "for": true, "with": true, "and": true, "or": true,
	"but": true, "this": true, "that": true, "it": true, "i": true, "you": true,
	"what": true, "how": true, "do": true, "does": true, "did": true,
}

// DefaultKeywordExtractor splits on whitespace, lowercases, strips
// punctuation and stop words, and returns up to three terms.
func DefaultKeywordExtractor(text string) []string {
	fields := strings.Fields(text)
	var out []string
	for _, f := range fields {
		f = strings.ToLower(strings.Trim(f, ".,!?;:\"'()[]{}"))
		if f == "" || stopWords[f] {
			continue
		}
		out = append(out, f)
		if len(out) == 3 {
			break
		}
	}
	return out
}
