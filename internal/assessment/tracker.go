package assessment

import "strings"

// Tracker records the normalized content keys emitted during one generation call.
// It is not safe for concurrent use and must not outlive the call.
type Tracker struct {
	keys map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{keys: make(map[string]struct{})}
}

// ContentKey normalizes question text for duplicate detection: trimmed,
// lower-cased, inner whitespace collapsed, then suffixed with the category.
func ContentKey(text string, category CategoryID) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " ")) + "|" + string(category)
}

func (t *Tracker) Seen(key string) bool {
	_, ok := t.keys[key]
	return ok
}

// Add records key and reports whether it was new.
func (t *Tracker) Add(key string) bool {
	if t.Seen(key) {
		return false
	}
	t.keys[key] = struct{}{}
	return true
}

func (t *Tracker) Len() int { return len(t.keys) }
