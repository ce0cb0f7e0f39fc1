package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/maxagent/rag/models"
)

// NoRelevantInformation is returned by Assemble when the search comes back
// empty; the completion prompt embeds it verbatim.
const NoRelevantInformation = "No relevant information found in the documents."

const (
	contextSeparator = "\n\n---\n\n"
	truncationMarker = "..."

	// charsPerToken is the documented approximation behind the default
	// estimator: 1 token is roughly 4 characters of English text.
	charsPerToken = 4
)

// TokenEstimator approximates the token cost of a text fragment. The default
// is a character-count heuristic; substituting a real tokenizer does not
// change the assembly contract.
type TokenEstimator func(text string) int

// EstimateTokens is the default TokenEstimator.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// Searcher is the slice of the vector index the assembler needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

// ContextAssembler packs the best-ranked search results into one context
// string bounded by a token budget. Packing is greedy best-rank-first: rank
// order always wins over size fit.
type ContextAssembler struct {
	searcher Searcher
	topK     int
	estimate TokenEstimator
}

func NewContextAssembler(searcher Searcher, topK int) *ContextAssembler {
	if topK <= 0 {
		topK = 5
	}
	return &ContextAssembler{
		searcher: searcher,
		topK:     topK,
		estimate: EstimateTokens,
	}
}

// WithTokenEstimator replaces the default character-count heuristic. The
// estimator prices whole fragments only; the overflow truncation always
// converts the remaining budget to characters at 4 per token, regardless of
// the estimator in use.
func (a *ContextAssembler) WithTokenEstimator(estimate TokenEstimator) *ContextAssembler {
	a.estimate = estimate
	return a
}

// Assemble searches for the query and accumulates fragments in ranked order
// until the next one would exceed tokenBudget. That fragment is truncated to
// the remaining character budget, marked, and ends the context; nothing is
// appended after a truncation.
func (a *ContextAssembler) Assemble(ctx context.Context, query string, tokenBudget int) (string, error) {
	results, err := a.searcher.Search(ctx, query, a.topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoRelevantInformation, nil
	}

	var parts []string
	usedTokens := 0
	for _, result := range results {
		content := result.Text
		cost := a.estimate(content)
		if usedTokens+cost > tokenBudget {
			remaining := (tokenBudget - usedTokens) * charsPerToken
			if remaining < 0 {
				remaining = 0
			}
			parts = append(parts, truncateBytes(content, remaining)+truncationMarker)
			break
		}
		parts = append(parts, content)
		usedTokens += cost
	}
	return strings.Join(parts, contextSeparator), nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
