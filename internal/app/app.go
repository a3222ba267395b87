// Package app provides the HTTP handlers for the contacts service.
package app

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/akash-tk/contactflix/internal/sdk/sqldb"
	"github.com/akash-tk/contactflix/internal/services/hash"
	"github.com/akash-tk/contactflix/internal/services/jwt"
	"github.com/akash-tk/contactflix/internal/services/sentry"
)

// ObjectStorage is the slice of the object store the handlers need:
// durable writes under generated names, reads for serving, and
// idempotent deletes.
type ObjectStorage interface {
	NewObjectName(filename string) string
	UploadWithVariants(ctx context.Context, objectName string, reader io.Reader, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	DeleteWithVariants(ctx context.Context, objectName string) error
}

type App struct {
	db      sqldb.Service
	storage ObjectStorage
	hash    *hash.HashService
	jwt     *jwt.TokenService
	sentry  *sentry.SentryService
}

func NewApp(
	db sqldb.Service,
	storage ObjectStorage,
	hash *hash.HashService,
	jwt *jwt.TokenService,
	sentry *sentry.SentryService,
) *App {
	return &App{
		db:      db,
		storage: storage,
		hash:    hash,
		jwt:     jwt,
		sentry:  sentry,
	}
}

func (a *App) toSentry(c *gin.Context, handler, errType string, level sentry.Level, err error) {
	a.sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handler)
		scope.SetExtra("error_type", errType)
		scope.SetLevel(level)
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		a.sentry.CaptureException(err)
	})
}
