package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/campusfind/lostfound-backend/internal/imaging"
	"github.com/google/uuid"
)

// FieldName is the multipart field items attach their photo under.
const FieldName = "image"

var ErrUnsupportedType = errors.New("Only jpeg, jpg and png images are allowed")

// URLPrefix is where saved photos are served from.
const URLPrefix = "/uploads/"

// SaveImage stores one uploaded photo under dir with a generated unique
// name and returns the public URL path to persist on the item record.
// Replaced photos are never deleted from disk.
func SaveImage(fh *multipart.FileHeader, dir string) (string, error) {
	if declared := fh.Header.Get("Content-Type"); declared != "" && !imaging.Allowed(declared) {
		return "", ErrUnsupportedType
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	processed, err := imaging.Process(data)
	if err != nil {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	name := uuid.New().String() + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, name), processed, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}

	return URLPrefix + name, nil
}
