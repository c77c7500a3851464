package professionals

import (
	"context"
	"fmt"
	"math/rand"
)

type expertiseLister interface {
	ListByExpertise(ctx context.Context, expertise string) ([]*Professional, error)
}

// Matcher picks a professional uniformly at random within an expertise tag.
// No ranking or availability filter is applied; any match is as good as
// another for the bot's "find me someone" UX.
type Matcher struct {
	repo expertiseLister
	pick func(n int) int
}

// NewMatcher creates a matcher over the professional directory.
func NewMatcher(repo expertiseLister) *Matcher {
	return &Matcher{repo: repo, pick: rand.Intn}
}

// newMatcherWithPick injects a deterministic picker for tests.
func newMatcherWithPick(repo expertiseLister, pick func(n int) int) *Matcher {
	return &Matcher{repo: repo, pick: pick}
}

// FindRandom returns a uniformly random professional with the given expertise
// tag, or nil when the directory has none. A nil result is not an error.
func (m *Matcher) FindRandom(ctx context.Context, expertise string) (*Professional, error) {
	matches, err := m.repo.ListByExpertise(ctx, expertise)
	if err != nil {
		return nil, fmt.Errorf("professionals: match %q: %w", expertise, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[m.pick(len(matches))], nil
}
