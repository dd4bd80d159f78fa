package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/usecases"
)

func fixedLocator(fix *domain.Fix, err error) *usecases.Locator {
	return usecases.NewLocator(&mockPositioning{
		currentPositionFn: func(ctx context.Context, opts domain.PositionOptions) (*domain.Fix, error) {
			return fix, err
		},
	}, nil)
}

func TestSessionService_OpenRejectsBadID(t *testing.T) {
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{})
	if _, err := svc.Open(context.Background(), "../etc"); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionService_OpenReturnsSameSession(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{})
	a, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := svc.Open(ctx, a.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a != b {
		t.Error("expected the same live session")
	}
	if a.Preferences().Language != "en" || a.Preferences().MapLayer != domain.LayerStandard {
		t.Errorf("unexpected defaults: %+v", a.Preferences())
	}
}

func TestSessionService_CaptureSetsPointAndCenter(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	loc := fixedLocator(&domain.Fix{Lat: 39.9042, Lon: 116.4074, Altitude: domain.Float(44)}, nil)
	svc := usecases.NewSessionService(nil, loc, pub, pub, usecases.SessionConfig{
		Position: domain.PositionOptions{Altitude: true},
	})
	sess, _ := svc.Open(ctx, "s1")

	out, err := svc.Capture(ctx, sess, domain.RoleA)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if out.Snapshot.PointA == nil || *out.Snapshot.PointA.Altitude != 44 {
		t.Fatalf("expected A with altitude, got %v", out.Snapshot.PointA)
	}
	if out.Notice == nil || out.Notice.Kind != domain.NoticeSuccess || out.Notice.Text != "Point A set" {
		t.Errorf("unexpected notice: %+v", out.Notice)
	}
	if c := sess.Center(); c.Lat != 39.9042 {
		t.Errorf("expected map centred on A, got %v", c)
	}
	if len(pub.snapshots) != 1 {
		t.Errorf("expected 1 published snapshot, got %d", len(pub.snapshots))
	}
}

func TestSessionService_CaptureFailureKeepsPriorPoint(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, fixedLocator(nil, errors.New("denied")), nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")
	if _, err := svc.SetPoint(ctx, sess, domain.RoleA, mustPoint(t, 1, 1, nil)); err != nil {
		t.Fatalf("SetPoint: %v", err)
	}

	out, err := svc.Capture(ctx, sess, domain.RoleA)
	if !errors.Is(err, domain.ErrPositioningUnavailable) {
		t.Fatalf("expected ErrPositioningUnavailable, got %v", err)
	}
	if out.Snapshot.PointA == nil || out.Snapshot.PointA.Lat != 1 {
		t.Errorf("expected prior A retained, got %v", out.Snapshot.PointA)
	}
	if out.Notice == nil || out.Notice.Kind != domain.NoticeError {
		t.Errorf("expected error notice, got %+v", out.Notice)
	}
}

func TestSessionService_CaptureWithoutAltitudeNotice(t *testing.T) {
	ctx := context.Background()
	loc := usecases.NewLocator(
		&mockPositioning{currentPositionFn: func(ctx context.Context, opts domain.PositionOptions) (*domain.Fix, error) {
			return &domain.Fix{Lat: 1, Lon: 1}, nil
		}},
		&mockAltitude{currentAltitudeFn: func(ctx context.Context, opts domain.PositionOptions) (float64, error) {
			return 0, errors.New("no barometer")
		}},
	)
	svc := usecases.NewSessionService(nil, loc, nil, nil, usecases.SessionConfig{
		Position: domain.PositionOptions{Altitude: true},
	})
	sess, _ := svc.Open(ctx, "s1")

	out, err := svc.Capture(ctx, sess, domain.RoleB)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if out.Snapshot.PointB == nil || out.Snapshot.PointB.HasAltitude() {
		t.Fatalf("expected B without altitude, got %v", out.Snapshot.PointB)
	}
	if out.Notice == nil || out.Notice.Kind != domain.NoticeInfo {
		t.Errorf("expected info notice, got %+v", out.Notice)
	}
}

func TestSessionService_TapRequiresArmedRole(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")

	if _, err := svc.Tap(ctx, sess, 10, 10); !errors.Is(err, domain.ErrNoPickTarget) {
		t.Fatalf("expected ErrNoPickTarget, got %v", err)
	}

	if _, err := svc.ArmPick(ctx, sess, domain.RoleB); err != nil {
		t.Fatalf("ArmPick: %v", err)
	}
	if sess.PickMode() != domain.RoleB {
		t.Fatalf("expected pick mode B, got %q", sess.PickMode())
	}

	out, err := svc.Tap(ctx, sess, 10, 370)
	if err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if out.Snapshot.PointB == nil || out.Snapshot.PointB.Lon != 10 || out.Snapshot.PointB.HasAltitude() {
		t.Errorf("unexpected B: %v", out.Snapshot.PointB)
	}
	if sess.PickMode() != "" {
		t.Error("expected pick mode disarmed after tap")
	}
}

func TestSessionService_ComputeNotices(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")

	out, err := svc.Compute(ctx, sess)
	if !errors.Is(err, domain.ErrMissingReferencePoint) {
		t.Fatalf("expected ErrMissingReferencePoint, got %v", err)
	}
	if out.Notice == nil || out.Notice.Text != "Set A and B first" {
		t.Errorf("unexpected notice: %+v", out.Notice)
	}

	_, _ = svc.SetPoint(ctx, sess, domain.RoleA, mustPoint(t, 0, 0, nil))
	_, _ = svc.SetPoint(ctx, sess, domain.RoleB, mustPoint(t, 0, 90, nil))
	out, err = svc.Compute(ctx, sess)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if out.Notice == nil || out.Notice.Text != "Bearing: 90.00°" {
		t.Errorf("unexpected notice: %+v", out.Notice)
	}
}

func TestSessionService_LocalizedNotice(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{DefaultLanguage: "zh"})
	sess, _ := svc.Open(ctx, "s1")

	out, _ := svc.ClearAll(ctx, sess)
	if out.Notice == nil || out.Notice.Text != "已清空" {
		t.Errorf("expected Chinese notice, got %+v", out.Notice)
	}
}

func TestSessionService_PreferencesPersistAcrossOpen(t *testing.T) {
	ctx := context.Background()
	persist := newMockPersistence()
	svc := usecases.NewSessionService(persist, nil, nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")

	lang, layer := "zh-CN", "satellite"
	if _, err := svc.UpdatePreferences(ctx, sess, &lang, &layer); err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	_, _ = svc.SetPoint(ctx, sess, domain.RoleB, mustPoint(t, 31.2304, 121.4737, nil))

	restarted := usecases.NewSessionService(persist, nil, nil, nil, usecases.SessionConfig{})
	again, err := restarted.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	prefs := again.Preferences()
	if prefs.Language != "zh" || prefs.MapLayer != domain.LayerSatellite {
		t.Errorf("unexpected preferences: %+v", prefs)
	}
	if c := again.Center(); c.Lat != 31.2304 {
		t.Errorf("expected centre on B, got %v", c)
	}
}

func TestSessionService_UpdatePreferencesRejectsLayer(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")

	layer := "terrain"
	if _, err := svc.UpdatePreferences(ctx, sess, nil, &layer); err == nil {
		t.Fatal("expected error for unknown layer")
	}
	if sess.Preferences().MapLayer != domain.LayerStandard {
		t.Error("expected layer unchanged")
	}
}

func TestSessionService_Goto(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewSessionService(nil, nil, nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")
	_, _ = svc.SetPoint(ctx, sess, domain.RoleA, mustPoint(t, 1, 1, nil))
	_, _ = svc.SetPoint(ctx, sess, domain.RoleB, mustPoint(t, 2, 2, nil))

	if _, err := svc.Goto(ctx, sess, domain.RoleA); err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if c := sess.Center(); c.Lat != 1 {
		t.Errorf("expected centre on A, got %v", c)
	}
}

func TestSessionService_PersistenceFailureSurfaced(t *testing.T) {
	ctx := context.Background()
	persist := newMockPersistence()
	persist.setFn = func(ctx context.Context, key string, value []byte) error {
		return errors.New("quota exceeded")
	}
	svc := usecases.NewSessionService(persist, nil, nil, nil, usecases.SessionConfig{})
	sess, _ := svc.Open(ctx, "s1")

	out, err := svc.SetPoint(ctx, sess, domain.RoleA, mustPoint(t, 1, 1, nil))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if out.Snapshot.PointA == nil {
		t.Error("expected A kept in memory")
	}
}
