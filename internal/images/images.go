// Package images stores trade screenshots on the local filesystem.
package images

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/id"
	"tradejournal/internal/logging"
)

// DirName is the images directory inside the data directory.
const DirName = "images"

var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Store saves images under a directory and hands out opaque references.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewImageError("", "failed to create image directory", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the image directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes raw image bytes and returns the new reference. The file
// extension follows the sniffed content type, defaulting to jpg.
func (s *Store) Put(ctx context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", apperrors.NewImageError("", "image is empty", nil)
	}

	name, err := id.New()
	if err != nil {
		return "", apperrors.NewImageError("", "failed to name image", err)
	}
	ref := "img_" + name + "." + sniffExt(raw)
	if err := os.WriteFile(filepath.Join(s.dir, ref), raw, 0644); err != nil {
		return "", apperrors.NewImageError(ref, "failed to write image", err)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("event", "image_stored").
		Str("ref", ref).
		Int("bytes", len(raw)).
		Msg("Image stored")
	return ref, nil
}

// PutDataURL decodes a base64 payload, with or without a "data:...;base64,"
// prefix, and stores it.
func (s *Store) PutDataURL(ctx context.Context, dataURL string) (string, error) {
	encoded := strings.TrimSpace(dataURL)
	if i := strings.Index(encoded, ","); i >= 0 {
		encoded = encoded[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperrors.NewImageError("", "invalid base64 payload", err)
	}
	return s.Put(ctx, raw)
}

// Get reads the image for ref. It reports false when ref is malformed or
// the file does not exist.
func (s *Store) Get(ctx context.Context, ref string) ([]byte, bool) {
	if !ValidReference(ref) {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		if !os.IsNotExist(err) {
			logger := logging.FromContext(ctx)
			logger.Warn().Err(err).Str("ref", ref).Msg("Failed to read image")
		}
		return nil, false
	}
	return data, true
}

// DataURL returns the image as a base64 data URL, or "" when absent.
func (s *Store) DataURL(ctx context.Context, ref string) string {
	data, ok := s.Get(ctx, ref)
	if !ok {
		return ""
	}
	return "data:" + ContentType(ref) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Delete removes the image for ref. Deleting a missing image is not an error.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if !ValidReference(ref) {
		return apperrors.NewImageError(ref, "invalid reference", apperrors.ErrImageNotFound)
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		return apperrors.NewImageError(ref, "failed to delete image", err)
	}
	return nil
}

// ValidReference reports whether ref names a file directly inside the
// image directory.
func ValidReference(ref string) bool {
	if ref == "" || ref == "." || ref == ".." || strings.HasPrefix(ref, ".") {
		return false
	}
	if strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return false
	}
	return filepath.Base(ref) == ref
}

// ContentType returns the MIME type implied by ref's extension. Unknown
// extensions are reported as JPEG, which is what earlier versions wrote.
func ContentType(ref string) string {
	if ct, ok := contentTypeByExt[strings.ToLower(filepath.Ext(ref))]; ok {
		return ct
	}
	return "image/jpeg"
}

func sniffExt(raw []byte) string {
	if ext, ok := extByContentType[http.DetectContentType(raw)]; ok {
		return ext
	}
	return "jpg"
}
