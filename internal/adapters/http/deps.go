package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/core/usecases"
	"github.com/samirrijal/refpoint/internal/pkg/format"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions  *usecases.SessionService
	Presenter *format.Presenter
	NATS      *nats.Conn
	// Store is the persistence backend, checked by /v1/ready when it can ping.
	Store   ports.Pinger
	Backend string
}

func (d *Dependencies) presenter() *format.Presenter {
	if d.Presenter == nil {
		return format.NewPresenter(format.Meters)
	}
	return d.Presenter
}
