package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves user-friendly references to session IDs
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver over the given store
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to a session ID.
//
// Supported references:
//   - "@last" - most recently updated session
//   - "@first" - oldest entry in the list
//   - "1", "2", "3" - by list index (1-based, most recent first)
//   - "substring" - match on title (error if ambiguous)
//   - a full session ID
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	sessions := r.store.List()
	if len(sessions) == 0 {
		return "", fmt.Errorf("no sessions found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return sessions[0].ID, nil
	case "@first":
		return sessions[len(sessions)-1].ID, nil
	}

	// 1-based index into the most-recent-first list
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 1 || idx > len(sessions) {
			return "", fmt.Errorf("index %d out of range (1-%d)", idx, len(sessions))
		}
		return sessions[idx-1].ID, nil
	}

	// Exact ID
	for _, sess := range sessions {
		if sess.ID == ref {
			return sess.ID, nil
		}
	}

	// Title substring, case-insensitive
	needle := strings.ToLower(ref)
	var matches []*ChatSession
	for _, sess := range sessions {
		if strings.Contains(strings.ToLower(sess.Title), needle) {
			matches = append(matches, sess)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session matches '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = m.Title
		}
		return "", fmt.Errorf("'%s' is ambiguous, matches: %s", ref, strings.Join(titles, ", "))
	}
}
