package cleaner

import "unicode/utf8"

// runesPerToken is the divisor for the token estimate. English prose
// averages about four characters per token and CJK about one and a
// half; three sits between the two and errs toward overestimating, so
// the savings the API reports are never inflated.
const runesPerToken = 3

// EstimateTokens approximates how many LLM tokens a piece of text
// costs. The pipeline only needs before/after estimates to show what
// extraction saved; exact tokenizer output is not the point, so no
// tokenizer dependency is pulled in.
func EstimateTokens(text string) int {
	runes := utf8.RuneCountInString(text)
	switch {
	case runes == 0:
		return 0
	case runes < runesPerToken:
		return 1
	}
	return runes / runesPerToken
}
