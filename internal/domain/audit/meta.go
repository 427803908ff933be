package audit

import (
	"context"

	"github.com/labstack/echo/v4"
)

// Meta is the request metadata attached to entries.
type Meta struct {
	IPAddress string
	UserAgent string
}

type metaKey struct{}

// CaptureMeta stores the caller's IP and user agent in the request context so
// the service layer can attribute audit entries without seeing the request.
func CaptureMeta() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meta := Meta{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}
			ctx := context.WithValue(c.Request().Context(), metaKey{}, meta)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// MetaFromContext returns the captured request metadata, zero if absent.
func MetaFromContext(ctx context.Context) Meta {
	meta, _ := ctx.Value(metaKey{}).(Meta)
	return meta
}

// WithMeta returns a context carrying the given metadata. Used by tests.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}
