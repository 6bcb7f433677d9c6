package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

const MaxUploadBytes = 10 * 1024 * 1024

type UploadService interface {
	// SaveUpload streams a PDF into the uploads dir under a sanitized,
	// timestamped name and returns the stored path. A partially written
	// file is removed on failure.
	SaveUpload(filename string, src io.Reader, size int64) (string, error)
}

type uploadService struct {
	log *logger.Logger
	dir string
}

func NewUploadService(log *logger.Logger, dir string) (UploadService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &uploadService{
		log: log.With("service", "UploadService"),
		dir: dir,
	}, nil
}

func (s *uploadService) SaveUpload(filename string, src io.Reader, size int64) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", apierr.Validation("only PDF files are supported")
	}
	if size > MaxUploadBytes {
		return "", apierr.Validation("file exceeds the %d byte limit", MaxUploadBytes)
	}

	name := fmt.Sprintf("%s_%d.pdf", sanitizeFilename(filename), time.Now().Unix())
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", apierr.Storage("failed to create upload file")
	}

	// Cap the copy one byte past the limit so oversized streams with an
	// unknown size are still rejected.
	written, err := io.Copy(dst, io.LimitReader(src, MaxUploadBytes+1))
	closeErr := dst.Close()
	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err == nil && written > MaxUploadBytes {
		err = apierr.Validation("file exceeds the %d byte limit", MaxUploadBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return "", apiErr
		}
		return "", apierr.Storage("failed to write upload file")
	}

	s.log.Info("File uploaded", "path", path, "bytes", written)
	return path, nil
}

// sanitizeFilename keeps alphanumerics, dashes and underscores, dropping
// everything else including the extension.
func sanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = "upload"
	}
	return out
}
