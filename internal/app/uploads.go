package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akash-tk/contactflix/internal/services/minio"
	"github.com/akash-tk/contactflix/internal/services/sentry"
)

// maxUploadBytes caps profile pictures at 5 MiB.
const maxUploadBytes = 5 << 20

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type imageUpload struct {
	header      *multipart.FileHeader
	contentType string
}

// screenProfilePicture inspects the optional "profilePicture" form file
// before any domain logic runs. It returns (nil, "") when no file was
// uploaded, (nil, message) when the file fails type or size screening,
// and the accepted upload otherwise.
func screenProfilePicture(c *gin.Context) (*imageUpload, string) {
	header, err := c.FormFile("profilePicture")
	if err != nil {
		// Missing file (or a non-multipart request) means no upload.
		return nil, ""
	}

	if header.Size > maxUploadBytes {
		return nil, ErrOnlyImageFiles
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return nil, ErrOnlyImageFiles
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !allowedImageMimes[contentType] {
		return nil, ErrOnlyImageFiles
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	return &imageUpload{header: header, contentType: contentType}, ""
}

// storeUpload writes a screened upload to object storage under a
// generated unique name and returns the stored path.
func (a *App) storeUpload(ctx context.Context, up *imageUpload) (string, error) {
	file, err := up.header.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	objectName := a.storage.NewObjectName(up.header.Filename)
	if err := a.storage.UploadWithVariants(ctx, objectName, file, up.contentType); err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}

	return objectName, nil
}

// removeStoredImage deletes a stored profile picture without failing the
// surrounding operation: a leaked object is preferable to blocking a
// record mutation on the object store.
func (a *App) removeStoredImage(c *gin.Context, handler, objectName string) {
	if err := a.storage.DeleteWithVariants(c.Request.Context(), objectName); err != nil {
		slog.Warn("failed to remove stored image", "object", objectName, "error", err)
		a.toSentry(c, handler, "storage_delete", sentry.LevelWarning, err)
	}
}

// HandleServeUpload streams a stored profile picture back to the client.
func (a *App) HandleServeUpload(c *gin.Context) {
	object := path.Base(c.Param("object"))
	if object == "" || object == "." || object == "/" {
		writeError(c, ErrFileNotFound, nil)
		return
	}

	rc, err := a.storage.Download(c.Request.Context(), "uploads/"+object)
	if err != nil {
		if errors.Is(err, minio.ErrNotFound) {
			writeError(c, ErrFileNotFound, nil)
			return
		}
		a.toSentry(c, "serve_upload", "storage", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}
	defer rc.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(object)); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
