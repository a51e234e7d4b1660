package segment

import (
	"anuncios/internal"
	"anuncios/internal/profile"
)

// HeaderTracker carries the inherited (transaction, property type, category)
// context through one document. Context is append-only: a later header only
// replaces fields it sets to a non-empty value.
type HeaderTracker struct {
	prof    *profile.Profile
	current internal.HeaderContext
}

func NewHeaderTracker(prof *profile.Profile) *HeaderTracker {
	return &HeaderTracker{prof: prof, current: internal.NewHeaderContext()}
}

// Observe checks line against the profile's ordered header rules. On a match
// it merges the rule's context into the current one and reports true; the
// caller must then treat the line as a header, never as listing text.
func (t *HeaderTracker) Observe(line string) (internal.HeaderContext, bool) {
	ctx, ok := t.prof.MatchHeader(line)
	if !ok {
		return t.current, false
	}
	t.current = t.current.Merge(ctx)
	return t.current, true
}

// Current returns the context inherited by listings opened now.
func (t *HeaderTracker) Current() internal.HeaderContext {
	return t.current
}
