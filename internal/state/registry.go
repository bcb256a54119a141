package state

import (
	"errors"
	"slices"

	"github.com/livekit/protocol/livekit"

	"hoops-broadcast/internal/store"
)

// ErrUnknownSource is returned by Select for a participant that is not registered.
var ErrUnknownSource = errors.New("unknown stream source")

// Registry tracks the remote camera sources currently known and which one is
// selected for output. The list is replaced copy-on-write, so slices handed to
// subscribers are never mutated afterwards.
type Registry struct {
	Available *store.Store[[]StreamInfo]
	Selected  *store.Store[livekit.ParticipantID]
}

// NewRegistry returns an empty registry with no selection.
func NewRegistry() *Registry {
	return &Registry{
		Available: store.New[[]StreamInfo](nil),
		Selected:  store.New[livekit.ParticipantID](""),
	}
}

// List returns the known sources.
func (r *Registry) List() []StreamInfo {
	return r.Available.Get()
}

// Upsert adds info or replaces the entry with the same identity.
func (r *Registry) Upsert(info StreamInfo) {
	r.Available.Update(func(cur []StreamInfo) []StreamInfo {
		next := make([]StreamInfo, 0, len(cur)+1)
		replaced := false
		for _, s := range cur {
			if s.Identity == info.Identity {
				next = append(next, info)
				replaced = true
				continue
			}
			next = append(next, s)
		}
		if !replaced {
			next = append(next, info)
		}
		return next
	})
}

// Remove drops the source with identity. If it was selected the selection is
// cleared. Reports whether an entry was removed.
func (r *Registry) Remove(identity livekit.ParticipantIdentity) bool {
	var removed *StreamInfo
	r.Available.Update(func(cur []StreamInfo) []StreamInfo {
		idx := slices.IndexFunc(cur, func(s StreamInfo) bool { return s.Identity == identity })
		if idx < 0 {
			return cur
		}
		gone := cur[idx]
		removed = &gone
		return slices.Concat(cur[:idx:idx], cur[idx+1:])
	})
	if removed == nil {
		return false
	}
	if sid := removed.SID; sid != "" && r.Selected.Get() == sid {
		r.Selected.Set("")
	}
	return true
}

// Select marks the source with sid as the active one. An empty sid clears the
// selection so callers fall back to the default source.
func (r *Registry) Select(sid livekit.ParticipantID) error {
	if sid != "" {
		if _, ok := r.find(sid); !ok {
			return ErrUnknownSource
		}
	}
	r.Selected.Set(sid)
	return nil
}

// ForGame returns the sources for phase and game ordered main, angle1, angle2,
// then unclassified angles.
func (r *Registry) ForGame(phase Phase, game Game) []StreamInfo {
	var out []StreamInfo
	for _, s := range r.List() {
		if s.Phase == phase && s.Game == game {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b StreamInfo) int {
		return angleRank(a.Angle) - angleRank(b.Angle)
	})
	return out
}

// Current returns the selected source, or the default one when nothing valid
// is selected: the first main-angle feed, else the first known feed.
func (r *Registry) Current() (StreamInfo, bool) {
	if sid := r.Selected.Get(); sid != "" {
		if s, ok := r.find(sid); ok {
			return s, true
		}
	}
	list := r.List()
	for _, s := range list {
		if s.Angle == AngleMain {
			return s, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return StreamInfo{}, false
}

func (r *Registry) find(sid livekit.ParticipantID) (StreamInfo, bool) {
	for _, s := range r.List() {
		if s.SID == sid {
			return s, true
		}
	}
	return StreamInfo{}, false
}

func angleRank(a Angle) int {
	switch a {
	case AngleMain:
		return 0
	case AngleFirst:
		return 1
	case AngleSecond:
		return 2
	}
	return 3
}
