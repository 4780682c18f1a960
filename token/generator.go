package token

import (
	"errors"
	"fmt"
)

// ErrNoStrategy is returned by [Generator.Create] for a category without a
// registered strategy. [NewGenerator] verifies exhaustiveness, so this is
// unreachable in correct wiring and fatal if observed.
var ErrNoStrategy = errors.New("no token strategy registered for category")

// requiredCategories is the set every generator must cover.
var requiredCategories = []Category{
	CategorySession,
	CategoryEmailVerification,
	CategoryPasswordReset,
}

// Generator dispatches claim sets to the strategy registered for the
// requested category. The category map is built once, verified, and immutable
// thereafter.
type Generator struct {
	strategies map[Category]Strategy
}

// NewGenerator builds the category map from the given strategies. It fails if
// two strategies declare the same category or if any required category is
// left without a strategy — both are startup wiring defects.
func NewGenerator(strategies ...Strategy) (*Generator, error) {
	byCategory := make(map[Category]Strategy, len(strategies))
	for _, strategy := range strategies {
		category := strategy.Category()
		if _, dup := byCategory[category]; dup {
			return nil, fmt.Errorf("duplicate token strategy for category %s", category)
		}
		byCategory[category] = strategy
	}

	for _, category := range requiredCategories {
		if _, ok := byCategory[category]; !ok {
			return nil, fmt.Errorf("missing token strategy for category %s", category)
		}
	}

	return &Generator{strategies: byCategory}, nil
}

// Create signs claims and subject with the strategy registered for c.
func (g *Generator) Create(claims map[string]any, subject string, c Category) (string, error) {
	strategy, ok := g.strategies[c]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoStrategy, c)
	}
	return strategy.Generate(claims, subject)
}
