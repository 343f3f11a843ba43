package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/models"
)

// LocalOptions configures the embedded store.
type LocalOptions struct {
	// Path is the directory for the database files. Ignored when InMemory
	// is set.
	Path string

	// InMemory skips disk persistence entirely. Used by tests.
	InMemory bool
}

// Local is the embedded BadgerDB implementation of RecordStore. Each
// collection lives under a single key as a JSON array, so every mutation is
// a whole-collection read-modify-write inside one transaction. That matches
// the single-writer model this system assumes; last writer wins.
type Local struct {
	db *badger.DB
}

// OpenLocal opens (or creates) the store at opts.Path.
func OpenLocal(opts LocalOptions) (*Local, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Path).WithSyncWrites(true)
	}
	// Badger's own logging is noisy at startup; the store logs through the
	// application logger instead.
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger at %q: %v", ErrStorageUnavailable, opts.Path, err)
	}
	return &Local{db: db}, nil
}

// Close releases the underlying database.
func (s *Local) Close() error {
	return s.db.Close()
}

func (s *Local) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("%w: database closed", ErrStorageUnavailable)
	}
	return nil
}

func (s *Local) Initialize(ctx context.Context) error {
	seeded := false

	if present, err := s.hasKey(usersKey); err != nil {
		return err
	} else if !present {
		users, err := SeedUsers()
		if err != nil {
			return fmt.Errorf("building seed users: %w", err)
		}
		if err := writeAll(s, usersKey, users); err != nil {
			return err
		}
		seeded = true
	}

	if present, err := s.hasKey(complaintsKey); err != nil {
		return err
	} else if !present {
		if err := writeAll(s, complaintsKey, SeedComplaints()); err != nil {
			return err
		}
		seeded = true
	}

	if seeded {
		logger.WithStore("local").Info("Seeded record store with initial data")
	}
	return nil
}

func (s *Local) Users(ctx context.Context) ([]models.User, error) {
	return readAll[models.User](s, usersKey)
}

func (s *Local) Complaints(ctx context.Context) ([]models.Complaint, error) {
	return readAll[models.Complaint](s, complaintsKey)
}

func (s *Local) SaveUser(ctx context.Context, u models.User) error {
	err := upsert(s, usersKey, u, func(r models.User) string { return r.ID }, false)
	if err != nil {
		return err
	}
	// Keep the session pointer in sync so a self-edit is visible on the
	// next session read.
	current, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.ID == u.ID {
		return s.SetCurrentUser(ctx, u)
	}
	return nil
}

func (s *Local) SaveComplaint(ctx context.Context, cp models.Complaint) error {
	return upsert(s, complaintsKey, cp, func(r models.Complaint) string { return r.ID }, true)
}

func (s *Local) DeleteUser(ctx context.Context, id string) error {
	return deleteByKey[models.User](s, usersKey, func(r models.User) string { return r.ID }, id)
}

func (s *Local) DeleteComplaint(ctx context.Context, id string) error {
	return deleteByKey[models.Complaint](s, complaintsKey, func(r models.Complaint) string { return r.ID }, id)
}

func (s *Local) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, found, err := s.get(currentUserKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		logger.WithStore("local").Warn("Discarding unparseable session payload", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}
	return &u, nil
}

func (s *Local) SetCurrentUser(ctx context.Context, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return s.set(currentUserKey, raw)
}

func (s *Local) ClearCurrentUser(ctx context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(currentUserKey))
	})
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", ErrStorageUnavailable, currentUserKey, err)
	}
	return nil
}

func (s *Local) get(key string) ([]byte, bool, error) {
	var raw []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, key, err)
	}
	return raw, found, nil
}

func (s *Local) set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *Local) hasKey(key string) (bool, error) {
	_, found, err := s.get(key)
	return found, err
}

// readAll loads a whole collection. A payload that no longer parses is
// treated as an empty collection rather than a hard failure, so the portal
// stays usable degraded; only medium-level failures propagate.
func readAll[T any](s *Local, key string) ([]T, error) {
	raw, found, err := s.get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.WithStore("local").Warn("Discarding unparseable collection payload", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return []T{}, nil
	}
	return records, nil
}

// writeAll atomically replaces a whole collection.
func writeAll[T any](s *Local, key string, records []T) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.set(key, raw)
}

// upsert replaces the record with a matching key in place, or inserts it
// (prepended when prepend is set, appended otherwise). This is the single
// mutation primitive for both collections.
func upsert[T any](s *Local, key string, rec T, keyFn func(T) string, prepend bool) error {
	records, err := readAll[T](s, key)
	if err != nil {
		return err
	}
	id := keyFn(rec)
	replaced := false
	for i := range records {
		if keyFn(records[i]) == id {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		if prepend {
			records = append([]T{rec}, records...)
		} else {
			records = append(records, rec)
		}
	}
	return writeAll(s, key, records)
}

func deleteByKey[T any](s *Local, key string, keyFn func(T) string, id string) error {
	records, err := readAll[T](s, key)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if keyFn(r) != id {
			kept = append(kept, r)
		}
	}
	return writeAll(s, key, kept)
}
