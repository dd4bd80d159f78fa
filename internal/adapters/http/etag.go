package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware tags GET responses for the geodesic query and session views
// so that polling map clients can revalidate with If-None-Match. A validator
// already set by the handler is kept; otherwise a weak tag is derived from
// the body.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		path := c.Path()
		if path != "/v1/geodesic" && !strings.HasPrefix(path, "/v1/sessions/") {
			return nil
		}

		etag := string(c.Response().Header.Peek(fiber.HeaderETag))
		if etag == "" {
			body := c.Response().Body()
			if len(body) == 0 {
				return nil
			}
			sum := sha256.Sum256(body)
			etag = `W/"` + hex.EncodeToString(sum[:8]) + `"`
			c.Set(fiber.HeaderETag, etag)
		}

		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

// etagMatches applies the weak comparison of If-None-Match against etag.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
