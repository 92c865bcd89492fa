package fincal

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"time"
)

// MemoryStorage keeps the document in memory. Corrupt copies are kept in
// Archived.
type MemoryStorage struct {
	Data     []byte // nil means no document
	Archived [][]byte
}

func (s *MemoryStorage) ReadDocument(ctx context.Context) ([]byte, error) {
	if s.Data == nil {
		return nil, fmt.Errorf("in-memory ledger document: %w", fs.ErrNotExist)
	}
	return slices.Clone(s.Data), nil
}

func (s *MemoryStorage) WriteDocument(ctx context.Context, data []byte) error {
	s.Data = slices.Clone(data)
	return nil
}

func (s *MemoryStorage) ArchiveCorrupt(ctx context.Context, data []byte, at time.Time) (string, error) {
	s.Archived = append(s.Archived, slices.Clone(data))
	return fmt.Sprintf("memory#%d", len(s.Archived)-1), nil
}
