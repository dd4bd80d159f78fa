package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/usecases"
	"github.com/samirrijal/refpoint/internal/pkg/format"
)

// buildSchema creates the GraphQL schema wired to the session service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"altitude":  &graphql.Field{Type: graphql.Float},
		},
	})

	displayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Display",
		Fields: graphql.Fields{
			"bearing":        &graphql.Field{Type: graphql.String},
			"compass":        &graphql.Field{Type: graphql.String},
			"distance":       &graphql.Field{Type: graphql.String},
			"altitude_a":     &graphql.Field{Type: graphql.String},
			"altitude_b":     &graphql.Field{Type: graphql.String},
			"altitude_delta": &graphql.Field{Type: graphql.String},
		},
	})

	noticeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Notice",
		Fields: graphql.Fields{
			"kind": &graphql.Field{Type: graphql.String},
			"text": &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":                    &graphql.Field{Type: graphql.String},
			"point_a":               &graphql.Field{Type: geoPointType},
			"point_b":               &graphql.Field{Type: geoPointType},
			"state":                 &graphql.Field{Type: graphql.String},
			"bearing_degrees":       &graphql.Field{Type: graphql.Float},
			"distance_meters":       &graphql.Field{Type: graphql.Float},
			"altitude_delta_meters": &graphql.Field{Type: graphql.Float},
			"display":               &graphql.Field{Type: displayType},
			"language":              &graphql.Field{Type: graphql.String},
			"map_layer":             &graphql.Field{Type: graphql.String},
			"pick_mode":             &graphql.Field{Type: graphql.String},
			"notice":                &graphql.Field{Type: noticeType},
			"outcome":               &graphql.Field{Type: graphql.String},
		},
	})

	geodesicType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Geodesic",
		Fields: graphql.Fields{
			"from":                  &graphql.Field{Type: geoPointType},
			"to":                    &graphql.Field{Type: geoPointType},
			"bearing_degrees":       &graphql.Field{Type: graphql.Float},
			"distance_meters":       &graphql.Field{Type: graphql.Float},
			"altitude_delta_meters": &graphql.Field{Type: graphql.Float},
			"midpoint":              &graphql.Field{Type: geoPointType},
			"bearing":               &graphql.Field{Type: graphql.String},
			"compass":               &graphql.Field{Type: graphql.String},
			"distance":              &graphql.Field{Type: graphql.String},
		},
	})

	sessionArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	roleArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String), Description: "A or B"}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current state of a session",
				Args:        graphql.FieldConfigArgument{"id": sessionArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Sessions.Open(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return sessionResult(deps, sess, usecases.Outcome{Snapshot: sess.Store.Snapshot()}, nil)
				},
			},
			"geodesic": &graphql.Field{
				Type:        geodesicType,
				Description: "Bearing and distance between two coordinates given as lat,lon[,alt]",
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, err := domain.ParseGeoPoint(p.Args["from"].(string))
					if err != nil {
						return nil, fmt.Errorf("from: %w", err)
					}
					to, err := domain.ParseGeoPoint(p.Args["to"].(string))
					if err != nil {
						return nil, fmt.Errorf("to: %w", err)
					}
					g := usecases.Inverse(from, to)
					return map[string]interface{}{
						"from":                  pointMap(&g.From),
						"to":                    pointMap(&g.To),
						"bearing_degrees":       floatValue(g.BearingDegrees),
						"distance_meters":       floatValue(g.DistanceMeters),
						"altitude_delta_meters": floatValue(g.AltitudeDeltaMeters),
						"midpoint":              pointMap(&g.Midpoint),
						"bearing":               format.Bearing(g.BearingDegrees),
						"compass":               format.Compass(g.BearingDegrees),
						"distance":              format.Distance(g.DistanceMeters),
					}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"setPoint": &graphql.Field{
				Type:        sessionType,
				Description: "Set A or B from a client-measured position",
				Args: graphql.FieldConfigArgument{
					"session":   sessionArg,
					"role":      roleArg,
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"altitude":  &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, err := domain.ParseRole(p.Args["role"].(string))
					if err != nil {
						return nil, err
					}
					var alt *float64
					if v, ok := p.Args["altitude"].(float64); ok {
						alt = &v
					}
					pt, err := domain.NewGeoPoint(p.Args["latitude"].(float64), p.Args["longitude"].(float64), alt)
					if err != nil {
						return nil, err
					}
					sess, err := deps.Sessions.Open(p.Context, p.Args["session"].(string))
					if err != nil {
						return nil, err
					}
					out, err := deps.Sessions.SetPoint(p.Context, sess, r, pt)
					return sessionResult(deps, sess, out, err)
				},
			},
			"clearPoint": &graphql.Field{
				Type:        sessionType,
				Description: "Unset A or B",
				Args:        graphql.FieldConfigArgument{"session": sessionArg, "role": roleArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, err := domain.ParseRole(p.Args["role"].(string))
					if err != nil {
						return nil, err
					}
					sess, err := deps.Sessions.Open(p.Context, p.Args["session"].(string))
					if err != nil {
						return nil, err
					}
					out, err := deps.Sessions.ClearPoint(p.Context, sess, r)
					return sessionResult(deps, sess, out, err)
				},
			},
			"clearAll": &graphql.Field{
				Type:        sessionType,
				Description: "Unset both points",
				Args:        graphql.FieldConfigArgument{"session": sessionArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Sessions.Open(p.Context, p.Args["session"].(string))
					if err != nil {
						return nil, err
					}
					out, err := deps.Sessions.ClearAll(p.Context, sess)
					return sessionResult(deps, sess, out, err)
				},
			},
			"compute": &graphql.Field{
				Type:        sessionType,
				Description: "Derive bearing and distance from A to B",
				Args:        graphql.FieldConfigArgument{"session": sessionArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Sessions.Open(p.Context, p.Args["session"].(string))
					if err != nil {
						return nil, err
					}
					out, err := deps.Sessions.Compute(p.Context, sess)
					return sessionResult(deps, sess, out, err)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// sessionResult flattens a session view for GraphQL. Errors that still leave
// a valid view are reported through "outcome" rather than failing the field.
func sessionResult(deps *Dependencies, sess *usecases.Session, out usecases.Outcome, err error) (interface{}, error) {
	code, ok := outcomeCode(err)
	if !ok {
		return nil, err
	}
	v := buildView(deps, sess, out)

	m := map[string]interface{}{
		"id":                    v.ID,
		"point_a":               pointMap(v.Snapshot.PointA),
		"point_b":               pointMap(v.Snapshot.PointB),
		"state":                 string(v.Snapshot.Result.State),
		"bearing_degrees":       floatValue(v.Snapshot.Result.BearingDegrees),
		"distance_meters":       floatValue(v.Snapshot.Result.DistanceMeters),
		"altitude_delta_meters": floatValue(v.Snapshot.Result.AltitudeDeltaMeters),
		"display": map[string]interface{}{
			"bearing":        v.Display.Bearing,
			"compass":        v.Display.Compass,
			"distance":       v.Display.Distance,
			"altitude_a":     v.Display.AltitudeA,
			"altitude_b":     v.Display.AltitudeB,
			"altitude_delta": v.Display.AltitudeDelta,
		},
		"language":  v.Preferences.Language,
		"map_layer": string(v.Preferences.MapLayer),
		"pick_mode": string(v.PickMode),
		"outcome":   code,
	}
	if v.Notice != nil {
		m["notice"] = map[string]interface{}{"kind": string(v.Notice.Kind), "text": v.Notice.Text}
	}
	return m, nil
}

func pointMap(p *domain.GeoPoint) interface{} {
	if p == nil {
		return nil
	}
	return map[string]interface{}{
		"latitude":  p.Lat,
		"longitude": p.Lon,
		"altitude":  floatValue(p.Altitude),
	}
}

func floatValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}
		if deps.Sessions == nil {
			return errInternal(c, "session service not configured")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
