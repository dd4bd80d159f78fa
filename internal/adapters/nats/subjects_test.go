package natsadapter_test

import (
	"testing"

	natsadapter "github.com/samirrijal/refpoint/internal/adapters/nats"
)

func TestSubjects(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{natsadapter.SessionSubject("abc", natsadapter.EventSnapshot), "refpoint.session.abc.snapshot"},
		{natsadapter.SessionSubject("abc", natsadapter.EventNotice), "refpoint.session.abc.notice"},
		{natsadapter.SessionWildcard("abc"), "refpoint.session.abc.>"},
		{natsadapter.FixSubject("phone"), "refpoint.position.phone.fix"},
		{natsadapter.AltitudeSubject("phone"), "refpoint.position.phone.altitude"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}
