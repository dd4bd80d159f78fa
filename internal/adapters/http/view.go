package http

import (
	"errors"

	"github.com/samirrijal/refpoint/internal/adapters/mapview"
	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/usecases"
	"github.com/samirrijal/refpoint/internal/pkg/format"
)

// Outcome codes for operations that succeeded with a caveat.
const (
	OutcomeBearingUndefined  = "bearing_undefined"
	OutcomePersistenceFailed = "persistence_failed"
)

// SessionView is everything a client needs to render a session.
type SessionView struct {
	ID          string             `json:"id"`
	Snapshot    domain.Snapshot    `json:"snapshot"`
	Display     format.Display     `json:"display"`
	Map         mapview.View       `json:"map"`
	Preferences domain.Preferences `json:"preferences"`
	PickMode    domain.Role        `json:"pick_mode,omitempty"`
	Notice      *domain.Notice     `json:"notice,omitempty"`
	Outcome     string             `json:"outcome,omitempty"`
}

func buildView(deps *Dependencies, sess *usecases.Session, out usecases.Outcome) SessionView {
	prefs := sess.Preferences()
	return SessionView{
		ID:          sess.ID,
		Snapshot:    out.Snapshot,
		Display:     deps.presenter().Display(out.Snapshot),
		Map:         mapview.Project(out.Snapshot, sess.Center(), prefs.MapLayer),
		Preferences: prefs,
		PickMode:    sess.PickMode(),
		Notice:      out.Notice,
	}
}

// outcomeCode reports the caveat for errors that still leave a valid view.
func outcomeCode(err error) (string, bool) {
	switch {
	case err == nil:
		return "", true
	case errors.Is(err, domain.ErrBearingUndefined):
		return OutcomeBearingUndefined, true
	case errors.Is(err, domain.ErrPersistence):
		return OutcomePersistenceFailed, true
	}
	return "", false
}
