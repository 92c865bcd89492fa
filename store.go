package fincal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/sirupsen/logrus"
)

// Storage reads and writes the raw bytes of the ledger document.
type Storage interface {
	// ReadDocument returns the stored document. It returns an error matching
	// fs.ErrNotExist when nothing was stored yet.
	ReadDocument(ctx context.Context) ([]byte, error)
	// WriteDocument replaces the stored document as a whole.
	WriteDocument(ctx context.Context, data []byte) error
	// ArchiveCorrupt keeps a copy of unreadable document bytes and returns
	// where it was put.
	ArchiveCorrupt(ctx context.Context, data []byte, at time.Time) (string, error)
}

// Store loads and saves the ledger document through a Storage.
type Store struct {
	storage Storage
	log     logrus.FieldLogger
	now     func() time.Time
	opts    []Option
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the store logger.
func WithStoreLogger(log logrus.FieldLogger) StoreOption { return func(s *Store) { s.log = log } }

// WithStoreClock sets the clock used to stamp corrupt copies.
func WithStoreClock(now func() time.Time) StoreOption { return func(s *Store) { s.now = now } }

// WithLedgerOptions sets the options of the ledgers created by Update.
func WithLedgerOptions(opts ...Option) StoreOption {
	return func(s *Store) { s.opts = append(s.opts, opts...) }
}

// NewStore returns a Store over storage.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{storage: storage, log: logrus.StandardLogger(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the document.
//
// A missing document is replaced by a fresh one. A document that cannot be
// parsed is archived, replaced by a fresh one, and a warning is logged. In
// both cases the fresh document is saved before returning. Only storage
// failures are returned.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	data, err := s.storage.ReadDocument(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("no ledger document found, creating a new one")
		return s.reseed(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read ledger document: %w", err)
	}

	raw, err := decodeRaw(bytes.NewReader(data))
	if err != nil {
		where, archErr := s.storage.ArchiveCorrupt(ctx, data, s.now())
		if archErr != nil {
			return nil, fmt.Errorf("could not archive corrupt ledger document: %w", archErr)
		}
		s.log.WithError(err).WithField("backup", where).Warn("ledger document is corrupt, starting a new one")
		return s.reseed(ctx)
	}

	doc, repairs := normalize(raw)
	for _, r := range repairs {
		s.log.WithField("repair", r).Warn("ledger document repaired")
	}
	return doc, nil
}

func (s *Store) reseed(ctx context.Context) (*Document, error) {
	doc := NewDocument()
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save normalizes the document and writes it as a whole.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	// What is written must read back identically.
	if doc, err = Unmarshal(data); err != nil {
		return err
	}
	if data, err = Marshal(doc); err != nil {
		return err
	}
	if err := s.storage.WriteDocument(ctx, data); err != nil {
		return fmt.Errorf("could not write ledger document: %w", err)
	}
	return nil
}

// Update loads the document, applies mutate to a Ledger over it and saves
// it. Nothing is saved when mutate fails.
func (s *Store) Update(ctx context.Context, mutate func(*Ledger) error) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	opts := append([]Option{WithLogger(s.log)}, s.opts...)
	if err := mutate(NewLedger(doc, opts...)); err != nil {
		return err
	}
	return s.Save(ctx, doc)
}

// View loads the document and passes a Ledger over it to read. Nothing is
// saved.
func (s *Store) View(ctx context.Context, read func(*Ledger) error) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	opts := append([]Option{WithLogger(s.log)}, s.opts...)
	return read(NewLedger(doc, opts...))
}
