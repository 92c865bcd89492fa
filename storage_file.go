package fincal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// FileStorage keeps the document in a single JSON file.
type FileStorage struct {
	Path string
}

// NewFileStorage returns a FileStorage for path.
func NewFileStorage(path string) *FileStorage { return &FileStorage{Path: path} }

func (s *FileStorage) ReadDocument(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		// os errors already match fs.ErrNotExist
		return nil, err
	}
	return data, nil
}

// WriteDocument replaces the document atomically: a reader sees either the
// previous document or the new one, never a partial write.
func (s *FileStorage) WriteDocument(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("could not create ledger directory: %w", err)
	}
	if err := renameio.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("could not replace %s: %w", s.Path, err)
	}
	return nil
}

// maxArchiveAttempts bounds the suffixes tried when corrupt copies share a
// timestamp.
const maxArchiveAttempts = 100

// ArchiveCorrupt copies data to a new sibling file
// "<name>.corrupt.<stamp><ext>". An existing copy is never overwritten: a
// "-<n>" suffix is added to the stamp instead.
func (s *FileStorage) ArchiveCorrupt(ctx context.Context, data []byte, at time.Time) (string, error) {
	ext := filepath.Ext(s.Path)
	base := strings.TrimSuffix(s.Path, ext)
	stamp := at.UTC().Format("20060102T150405.000Z")
	for n := 0; n < maxArchiveAttempts; n++ {
		path := fmt.Sprintf("%s.corrupt.%s%s", base, stamp, ext)
		if n > 0 {
			path = fmt.Sprintf("%s.corrupt.%s-%d%s", base, stamp, n, ext)
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("could not archive corrupt document: %d copies stamped %s already exist", maxArchiveAttempts, stamp)
}
