package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/usecases"
	"github.com/samirrijal/refpoint/internal/pkg/format"
)

// PointRequest is a position measured by the client itself.
type PointRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

// TapRequest is a map tap; taps never carry altitude.
type TapRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PickRequest arms a role for the next tap; an empty role disarms.
type PickRequest struct {
	Role string `json:"role"`
}

// PreferencesRequest updates the fields that are present.
type PreferencesRequest struct {
	Language *string `json:"language"`
	MapLayer *string `json:"map_layer"`
}

// GeodesicResponse is the stateless inverse between two coordinates.
type GeodesicResponse struct {
	usecases.Geodesic
	Display GeodesicDisplay `json:"display"`
}

// GeodesicDisplay holds the formatted geodesic values.
type GeodesicDisplay struct {
	Bearing       string `json:"bearing"`
	Compass       string `json:"compass"`
	Distance      string `json:"distance"`
	AltitudeDelta string `json:"altitude_delta"`
}

// session opens the session named in the path.
func session(c *fiber.Ctx, deps *Dependencies) (*usecases.Session, error) {
	return deps.Sessions.Open(c.UserContext(), c.Params("id"))
}

// role parses the :role path parameter.
func role(c *fiber.Ctx) (domain.Role, error) {
	return domain.ParseRole(c.Params("role"))
}

// respond renders the session view, or the APIError for failures that
// leave nothing to show.
func respond(c *fiber.Ctx, deps *Dependencies, sess *usecases.Session, out usecases.Outcome, err error) error {
	code, ok := outcomeCode(err)
	if !ok {
		return domainError(c, err)
	}
	if code != "" {
		LoggerFromCtx(c.UserContext()).Info("session operation degraded", "session", sess.ID, "outcome", code, "error", err)
	}
	view := buildView(deps, sess, out)
	view.Outcome = code
	return c.JSON(view)
}

// CreateSessionHandler starts a new session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Create(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Status(201)
		c.Location("/v1/sessions/" + sess.ID)
		return c.JSON(buildView(deps, sess, usecases.Outcome{Snapshot: sess.Store.Snapshot()}))
	}
}

// GetSessionHandler returns the current view, restoring it from persistence.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(buildView(deps, sess, usecases.Outcome{Snapshot: sess.Store.Snapshot()}))
	}
}

// SetPointHandler stores a client-measured position as A or B.
func SetPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := role(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req PointRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Latitude == nil || req.Longitude == nil {
			return errBadRequest(c, "latitude and longitude are required")
		}
		p, err := domain.NewGeoPoint(*req.Latitude, *req.Longitude, req.Altitude)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.SetPoint(c.UserContext(), sess, r, p)
		return respond(c, deps, sess, out, err)
	}
}

// LocateHandler captures A or B from the positioning service.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := role(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.Capture(c.UserContext(), sess, r)
		return respond(c, deps, sess, out, err)
	}
}

// ClearPointHandler unsets A or B.
func ClearPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := role(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.ClearPoint(c.UserContext(), sess, r)
		return respond(c, deps, sess, out, err)
	}
}

// ClearAllHandler unsets both points.
func ClearAllHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.ClearAll(c.UserContext(), sess)
		return respond(c, deps, sess, out, err)
	}
}

// ComputeHandler derives bearing and distance.
func ComputeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.Compute(c.UserContext(), sess)
		return respond(c, deps, sess, out, err)
	}
}

// PickHandler arms (or disarms) the role set by the next tap.
func PickHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PickRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		var r domain.Role
		if req.Role != "" {
			parsed, err := domain.ParseRole(req.Role)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			r = parsed
		}

		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.ArmPick(c.UserContext(), sess, r)
		return respond(c, deps, sess, out, err)
	}
}

// TapHandler routes a map tap to the armed role.
func TapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req TapRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Latitude == nil || req.Longitude == nil {
			return errBadRequest(c, "latitude and longitude are required")
		}

		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.Tap(c.UserContext(), sess, *req.Latitude, *req.Longitude)
		return respond(c, deps, sess, out, err)
	}
}

// GotoHandler recentres the map on A or B.
func GotoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := role(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.Goto(c.UserContext(), sess, r)
		return respond(c, deps, sess, out, err)
	}
}

// PreferencesHandler changes language and/or map layer.
func PreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PreferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Language == nil && req.MapLayer == nil {
			return errBadRequest(c, "language or map_layer is required")
		}
		if req.MapLayer != nil {
			if _, err := domain.ParseMapLayer(*req.MapLayer); err != nil {
				return errBadRequest(c, err.Error())
			}
		}

		sess, err := session(c, deps)
		if err != nil {
			return domainError(c, err)
		}
		out, err := deps.Sessions.UpdatePreferences(c.UserContext(), sess, req.Language, req.MapLayer)
		return respond(c, deps, sess, out, err)
	}
}

// GeodesicHandler answers ?from=lat,lon[,alt]&to=lat,lon[,alt] without a session.
func GeodesicHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("from") == "" || c.Query("to") == "" {
			return errBadRequest(c, "from and to are required")
		}
		from, err := domain.ParseGeoPoint(c.Query("from"))
		if err != nil {
			return errBadRequest(c, "from: "+err.Error())
		}
		to, err := domain.ParseGeoPoint(c.Query("to"))
		if err != nil {
			return errBadRequest(c, "to: "+err.Error())
		}

		g := usecases.Inverse(from, to)
		return c.JSON(GeodesicResponse{
			Geodesic: g,
			Display: GeodesicDisplay{
				Bearing:       format.Bearing(g.BearingDegrees),
				Compass:       format.Compass(g.BearingDegrees),
				Distance:      format.Distance(g.DistanceMeters),
				AltitudeDelta: deps.presenter().Altitude(g.AltitudeDeltaMeters),
			},
		})
	}
}
