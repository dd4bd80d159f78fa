package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/pkg/i18n"
	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// SessionConfig holds the defaults applied to new sessions.
type SessionConfig struct {
	DefaultLanguage string
	DefaultLayer    domain.MapLayer
	DefaultCenter   domain.GeoPoint
	Position        domain.PositionOptions
}

// Session is the state one user works with: the reference point pair plus
// the UI-bound pick mode, preferences and map centre.
type Session struct {
	ID    string
	Store *ReferencePointStore

	mu     sync.Mutex
	prefs  domain.Preferences
	pick   domain.Role
	center domain.GeoPoint
}

// Preferences returns the session's language and map layer.
func (s *Session) Preferences() domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// PickMode returns the role the next map tap will set, or "" when disarmed.
func (s *Session) PickMode() domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pick
}

// Center returns the current map centre.
func (s *Session) Center() domain.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center.Clone()
}

func (s *Session) language() string {
	return s.Preferences().Language
}

func (s *Session) setCenter(p domain.GeoPoint) {
	s.mu.Lock()
	s.center = p.Clone()
	s.mu.Unlock()
}

// Outcome is what an operation leaves for the caller to render.
type Outcome struct {
	Snapshot domain.Snapshot
	Notice   *domain.Notice
}

// SessionService mediates every user action on a session.
type SessionService struct {
	persist   ports.PersistenceStore
	locator   *Locator
	publisher ports.EventPublisher
	notifier  ports.NotificationService
	tr        *i18n.Translator
	cfg       SessionConfig

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionService creates a SessionService. locator, publisher and notifier
// may be nil.
func NewSessionService(
	persist ports.PersistenceStore,
	locator *Locator,
	publisher ports.EventPublisher,
	notifier ports.NotificationService,
	cfg SessionConfig,
) *SessionService {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.DefaultLayer == "" {
		cfg.DefaultLayer = domain.LayerStandard
	}
	return &SessionService{
		persist:   persist,
		locator:   locator,
		publisher: publisher,
		notifier:  notifier,
		tr:        i18n.New(),
		cfg:       cfg,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a session with a fresh identifier.
func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	return s.Open(ctx, uuid.NewString())
}

// Open returns the live session for id, restoring it from persistence the
// first time it is seen.
func (s *SessionService) Open(ctx context.Context, id string) (*Session, error) {
	if !sessionIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSession, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	sess := &Session{
		ID:    id,
		Store: NewReferencePointStore(s.persist, keyPrefix(id)),
		prefs: domain.Preferences{
			Language: i18n.Code(s.cfg.DefaultLanguage),
			MapLayer: s.cfg.DefaultLayer,
		},
		center: s.cfg.DefaultCenter,
	}
	if err := sess.Store.Restore(ctx); err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	s.restorePreferences(ctx, sess)

	snap := sess.Store.Snapshot()
	if p, ok := snap.Point(domain.RoleA); ok {
		sess.center = p
	} else if p, ok := snap.Point(domain.RoleB); ok {
		sess.center = p
	}

	s.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess, nil
}

func (s *SessionService) restorePreferences(ctx context.Context, sess *Session) {
	if s.persist == nil {
		return
	}
	if data, err := s.persist.Get(ctx, keyPrefix(sess.ID)+domain.KeyLanguage); err == nil {
		sess.prefs.Language = i18n.Code(string(data))
	}
	if data, err := s.persist.Get(ctx, keyPrefix(sess.ID)+domain.KeyMapLayer); err == nil {
		if layer, err := domain.ParseMapLayer(string(data)); err == nil {
			sess.prefs.MapLayer = layer
		}
	}
}

// Capture sets role from the host positioning service. On failure the prior
// point is left unchanged.
func (s *SessionService) Capture(ctx context.Context, sess *Session, role domain.Role) (Outcome, error) {
	if s.locator == nil {
		n := s.notify(ctx, sess, domain.NoticeError, i18n.MsgPositioningFailed)
		return Outcome{Snapshot: sess.Store.Snapshot(), Notice: n},
			fmt.Errorf("%w: no positioning service configured", domain.ErrPositioningUnavailable)
	}

	acq, err := s.locator.Acquire(ctx, s.cfg.Position)
	if err != nil {
		metrics.PositioningFailures.Inc()
		slog.WarnContext(ctx, "positioning failed", "session", sess.ID, "role", role, "error", err)
		n := s.notify(ctx, sess, domain.NoticeError, i18n.MsgPositioningFailed)
		return Outcome{Snapshot: sess.Store.Snapshot(), Notice: n}, err
	}

	if acq.AltitudeUnavailable {
		metrics.AltitudeDegraded.Inc()
		return s.setPoint(ctx, sess, role, acq.Point, domain.SourcePositioning, domain.NoticeInfo, i18n.MsgAltitudeUnavailable)
	}
	return s.setPoint(ctx, sess, role, acq.Point, domain.SourcePositioning, domain.NoticeSuccess, i18n.MsgPointSet)
}

// SetPoint sets role from a position the client measured itself.
func (s *SessionService) SetPoint(ctx context.Context, sess *Session, role domain.Role, p domain.GeoPoint) (Outcome, error) {
	return s.setPoint(ctx, sess, role, p, domain.SourceClient, domain.NoticeSuccess, i18n.MsgPointSet)
}

// ArmPick chooses which role the next map tap sets; "" disarms.
func (s *SessionService) ArmPick(ctx context.Context, sess *Session, role domain.Role) (Outcome, error) {
	if role != "" {
		if err := checkRole(role); err != nil {
			return Outcome{Snapshot: sess.Store.Snapshot()}, err
		}
	}

	sess.mu.Lock()
	sess.pick = role
	sess.mu.Unlock()

	out := Outcome{Snapshot: sess.Store.Snapshot()}
	if role != "" {
		out.Notice = s.notify(ctx, sess, domain.NoticeInfo, i18n.MsgPickArmed, role)
	}
	return out, nil
}

// Tap sets the armed role from a map tap. Taps never carry altitude.
func (s *SessionService) Tap(ctx context.Context, sess *Session, lat, lon float64) (Outcome, error) {
	p, err := domain.NewGeoPoint(lat, lon, nil)
	if err != nil {
		return Outcome{Snapshot: sess.Store.Snapshot()}, err
	}

	sess.mu.Lock()
	role := sess.pick
	sess.pick = ""
	sess.mu.Unlock()

	if role == "" {
		n := s.notify(ctx, sess, domain.NoticeInfo, i18n.MsgNoPickTarget)
		return Outcome{Snapshot: sess.Store.Snapshot(), Notice: n}, domain.ErrNoPickTarget
	}
	return s.setPoint(ctx, sess, role, p, domain.SourceTap, domain.NoticeSuccess, i18n.MsgPointSet)
}

func (s *SessionService) setPoint(
	ctx context.Context,
	sess *Session,
	role domain.Role,
	p domain.GeoPoint,
	source domain.Source,
	kind domain.NoticeKind,
	key i18n.Key,
) (Outcome, error) {
	snap, err := sess.Store.SetPoint(ctx, role, p)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return Outcome{Snapshot: snap}, err
	}

	metrics.PointsSet.WithLabelValues(string(role), string(source)).Inc()
	if stored, ok := snap.Point(role); ok {
		sess.setCenter(stored)
	}
	s.publish(ctx, sess, snap)

	if err != nil {
		slog.WarnContext(ctx, "reference point kept in memory only", "session", sess.ID, "role", role, "error", err)
		n := s.notify(ctx, sess, domain.NoticeInfo, i18n.MsgSaveFailed)
		return Outcome{Snapshot: snap, Notice: n}, err
	}
	n := s.notify(ctx, sess, kind, key, role)
	return Outcome{Snapshot: snap, Notice: n}, nil
}

// ClearPoint unsets one reference point.
func (s *SessionService) ClearPoint(ctx context.Context, sess *Session, role domain.Role) (Outcome, error) {
	snap, err := sess.Store.ClearPoint(ctx, role)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return Outcome{Snapshot: snap}, err
	}
	s.publish(ctx, sess, snap)
	if err != nil {
		slog.WarnContext(ctx, "clear not persisted", "session", sess.ID, "role", role, "error", err)
	}
	return Outcome{Snapshot: snap, Notice: s.notify(ctx, sess, domain.NoticeSuccess, i18n.MsgPointCleared, role)}, err
}

// ClearAll unsets both reference points.
func (s *SessionService) ClearAll(ctx context.Context, sess *Session) (Outcome, error) {
	snap, err := sess.Store.ClearAll(ctx)
	s.publish(ctx, sess, snap)
	if err != nil {
		slog.WarnContext(ctx, "clear not persisted", "session", sess.ID, "error", err)
	}
	return Outcome{Snapshot: snap, Notice: s.notify(ctx, sess, domain.NoticeSuccess, i18n.MsgCleared)}, err
}

// Compute derives bearing and distance for the session's pair.
func (s *SessionService) Compute(ctx context.Context, sess *Session) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Compute")
	defer span.End()

	snap, err := sess.Store.ComputeBearingAndDistance()
	switch {
	case errors.Is(err, domain.ErrMissingReferencePoint):
		metrics.Computations.WithLabelValues("missing_point").Inc()
		return Outcome{Snapshot: snap, Notice: s.notify(ctx, sess, domain.NoticeError, i18n.MsgSetBothFirst)}, err

	case errors.Is(err, domain.ErrBearingUndefined):
		metrics.Computations.WithLabelValues("bearing_undefined").Inc()
		s.publish(ctx, sess, snap)
		return Outcome{Snapshot: snap, Notice: s.notify(ctx, sess, domain.NoticeError, i18n.MsgBearingFailed)}, err

	case err != nil:
		return Outcome{Snapshot: snap}, err
	}

	metrics.Computations.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.Float64("bearing_degrees", *snap.Result.BearingDegrees),
		attribute.Float64("distance_meters", *snap.Result.DistanceMeters),
	)
	s.publish(ctx, sess, snap)
	return Outcome{Snapshot: snap, Notice: s.notify(ctx, sess, domain.NoticeSuccess, i18n.MsgBearingResult, *snap.Result.BearingDegrees)}, nil
}

// Goto recentres the map on role when it is set.
func (s *SessionService) Goto(ctx context.Context, sess *Session, role domain.Role) (Outcome, error) {
	if err := checkRole(role); err != nil {
		return Outcome{Snapshot: sess.Store.Snapshot()}, err
	}
	snap := sess.Store.Snapshot()
	if p, ok := snap.Point(role); ok {
		sess.setCenter(p)
	}
	return Outcome{Snapshot: snap}, nil
}

// UpdatePreferences changes language and/or map layer; nil leaves a field as is.
func (s *SessionService) UpdatePreferences(ctx context.Context, sess *Session, language, layer *string) (Outcome, error) {
	var newLayer domain.MapLayer
	if layer != nil {
		l, err := domain.ParseMapLayer(*layer)
		if err != nil {
			return Outcome{Snapshot: sess.Store.Snapshot()}, err
		}
		newLayer = l
	}

	sess.mu.Lock()
	if language != nil {
		sess.prefs.Language = i18n.Code(*language)
	}
	if newLayer != "" {
		sess.prefs.MapLayer = newLayer
	}
	prefs := sess.prefs
	sess.mu.Unlock()

	var errs []error
	if s.persist != nil {
		if language != nil {
			if err := s.persist.Set(ctx, keyPrefix(sess.ID)+domain.KeyLanguage, []byte(prefs.Language)); err != nil {
				errs = append(errs, fmt.Errorf("%w: store %s: %w", domain.ErrPersistence, domain.KeyLanguage, err))
			}
		}
		if newLayer != "" {
			if err := s.persist.Set(ctx, keyPrefix(sess.ID)+domain.KeyMapLayer, []byte(prefs.MapLayer)); err != nil {
				errs = append(errs, fmt.Errorf("%w: store %s: %w", domain.ErrPersistence, domain.KeyMapLayer, err))
			}
		}
	}

	out := Outcome{Snapshot: sess.Store.Snapshot()}
	if err := errors.Join(errs...); err != nil {
		slog.WarnContext(ctx, "preferences kept in memory only", "session", sess.ID, "error", err)
		out.Notice = s.notify(ctx, sess, domain.NoticeInfo, i18n.MsgSaveFailed)
		return out, err
	}
	out.Notice = s.notify(ctx, sess, domain.NoticeSuccess, i18n.MsgPreferencesSaved)
	return out, nil
}

func (s *SessionService) notify(ctx context.Context, sess *Session, kind domain.NoticeKind, key i18n.Key, args ...any) *domain.Notice {
	n := &domain.Notice{Kind: kind, Text: s.tr.Sprintf(sess.language(), key, args...)}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, sess.ID, *n); err != nil {
			slog.DebugContext(ctx, "notice not delivered", "session", sess.ID, "error", err)
		}
	}
	return n
}

func (s *SessionService) publish(ctx context.Context, sess *Session, snap domain.Snapshot) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSnapshot(ctx, sess.ID, snap); err != nil {
		slog.WarnContext(ctx, "snapshot not published", "session", sess.ID, "error", err)
	}
}

func keyPrefix(sessionID string) string {
	return "refpoint:" + sessionID + ":"
}
