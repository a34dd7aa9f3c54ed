package preview

import (
	"cmp"
	"slices"
	"sync"
)

type Viewer struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	connections int
}

// ViewerSet counts the connections each user has open on a drawing, so a
// user with two tabs joins once and leaves once.
type ViewerSet struct {
	mu      sync.RWMutex
	viewers map[string]*Viewer // userID -> viewer
}

func NewViewerSet() *ViewerSet {
	return &ViewerSet{
		viewers: make(map[string]*Viewer),
	}
}

// Add records a connection and reports whether it is the user's first.
func (vs *ViewerSet) Add(userID, displayName string) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	v, ok := vs.viewers[userID]
	if !ok {
		v = &Viewer{UserID: userID, DisplayName: displayName}
		vs.viewers[userID] = v
	}
	v.connections++
	return !ok
}

// Remove drops a connection and reports whether it was the user's last.
func (vs *ViewerSet) Remove(userID string) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	v, ok := vs.viewers[userID]
	if !ok {
		return false
	}
	v.connections--
	if v.connections > 0 {
		return false
	}
	delete(vs.viewers, userID)
	return true
}

// List returns the viewers ordered by user id.
func (vs *ViewerSet) List() []Viewer {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	out := make([]Viewer, 0, len(vs.viewers))
	for _, v := range vs.viewers {
		out = append(out, Viewer{UserID: v.UserID, DisplayName: v.DisplayName})
	}
	slices.SortFunc(out, func(a, b Viewer) int { return cmp.Compare(a.UserID, b.UserID) })
	return out
}
