// Package progress implements the per-account progress store: favorites,
// bookmarks, learning notes and reading streaks.
//
// Each account owns exactly one JSON document under the store directory.
// Every mutation is serialized through a per-account mutex and written with
// a temp-file-plus-rename, so a document is never half-written and two
// accounts never share a write. A version stamp on each document detects
// writes that slipped in from outside the process; a mismatch is retried
// once and then surfaced as ErrWriteConflict.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrWriteConflict    = errors.New("progress record write conflict")
	ErrBookIDRequired   = errors.New("book id is required")
	ErrNoteTextRequired = errors.New("note text is required")
)

// Store is a keyed document store, one record per account.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewStore creates a progress store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}

	return &Store{
		dir:   dir,
		locks: make(map[uint]*sync.Mutex),
	}, nil
}

// AddFavorite appends bookID to the account's favorites. Adding a book that
// is already a favorite is a no-op, not an error; the returned bool reports
// whether the list actually changed.
func (s *Store) AddFavorite(accountID uint, bookID string) (bool, error) {
	if bookID == "" {
		return false, ErrBookIDRequired
	}

	added := false
	_, err := s.mutate(accountID, func(rec *Record) error {
		if rec.HasFavorite(bookID) {
			return nil
		}
		rec.Favorites = append(rec.Favorites, bookID)
		added = true
		return nil
	})
	return added, err
}

// RemoveFavorite removes bookID from the account's favorites.
// Returns ErrFavoriteNotFound if the book is not a favorite.
func (s *Store) RemoveFavorite(accountID uint, bookID string) error {
	if bookID == "" {
		return ErrBookIDRequired
	}

	_, err := s.mutate(accountID, func(rec *Record) error {
		for i, id := range rec.Favorites {
			if id == bookID {
				rec.Favorites = append(rec.Favorites[:i], rec.Favorites[i+1:]...)
				return nil
			}
		}
		return ErrFavoriteNotFound
	})
	return err
}

// SetBookmark saves a reading-progress marker for bookID, replacing any
// prior marker for that book.
func (s *Store) SetBookmark(accountID uint, bookID string, marker Marker) error {
	if bookID == "" {
		return ErrBookIDRequired
	}

	marker.UpdatedAt = time.Now()
	_, err := s.mutate(accountID, func(rec *Record) error {
		rec.Bookmarks[bookID] = marker
		return nil
	})
	return err
}

// AddNote appends a learning note for bookID. Notes are never overwritten;
// two notes with identical text produce two entries.
func (s *Store) AddNote(accountID uint, bookID, text string) (Note, error) {
	if bookID == "" {
		return Note{}, ErrBookIDRequired
	}
	if text == "" {
		return Note{}, ErrNoteTextRequired
	}

	note := Note{
		ID:        uuid.New().String(),
		BookID:    bookID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	_, err := s.mutate(accountID, func(rec *Record) error {
		rec.Notes = append(rec.Notes, note)
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// RecordActivity registers reading activity for the given calendar day and
// returns the updated streak. Repeated calls for the same day are idempotent.
func (s *Store) RecordActivity(accountID uint, day time.Time) (Streak, error) {
	var streak Streak
	_, err := s.mutate(accountID, func(rec *Record) error {
		rec.Streak.advance(day)
		streak = rec.Streak
		return nil
	})
	return streak, err
}

// Get returns the account's progress record, materializing an empty one if
// the account has no stored document yet. Reads share the per-account lock
// with writers so a reader never observes a document mid-update.
func (s *Store) Get(accountID uint) (*Record, error) {
	lk := s.lockFor(accountID)
	lk.Lock()
	defer lk.Unlock()

	return s.load(accountID)
}

// Delete removes the account's progress document. Deleting an account that
// never stored progress is a no-op.
func (s *Store) Delete(accountID uint) error {
	lk := s.lockFor(accountID)
	lk.Lock()
	defer lk.Unlock()

	err := os.Remove(s.path(accountID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete progress record: %w", err)
	}
	return nil
}

// mutate runs fn against the account's record under the per-account lock and
// persists the result. If the on-disk version moved underneath the loaded
// copy (an out-of-process write), the whole mutation is retried once before
// giving up with ErrWriteConflict.
func (s *Store) mutate(accountID uint, fn func(*Record) error) (*Record, error) {
	lk := s.lockFor(accountID)
	lk.Lock()
	defer lk.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		rec, err := s.load(accountID)
		if err != nil {
			return nil, err
		}
		loaded := rec.Version

		if err := fn(rec); err != nil {
			return nil, err
		}

		current, err := s.diskVersion(accountID)
		if err != nil {
			return nil, err
		}
		if current != loaded {
			continue
		}

		rec.Version = loaded + 1
		rec.UpdatedAt = time.Now()
		if err := s.write(rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	return nil, ErrWriteConflict
}

func (s *Store) lockFor(accountID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.locks[accountID]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[accountID] = lk
	}
	return lk
}

func (s *Store) path(accountID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("account_%d.json", accountID))
}

func (s *Store) load(accountID uint) (*Record, error) {
	data, err := os.ReadFile(s.path(accountID))
	if os.IsNotExist(err) {
		return newRecord(accountID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode progress record: %w", err)
	}
	if rec.Bookmarks == nil {
		rec.Bookmarks = make(map[string]Marker)
	}
	if rec.Favorites == nil {
		rec.Favorites = []string{}
	}
	if rec.Notes == nil {
		rec.Notes = []Note{}
	}
	return &rec, nil
}

// diskVersion reads only the version stamp of the stored document.
// A missing document has version 0.
func (s *Store) diskVersion(accountID uint) (int64, error) {
	data, err := os.ReadFile(s.path(accountID))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read progress record: %w", err)
	}

	var stamp struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &stamp); err != nil {
		return 0, fmt.Errorf("decode progress record: %w", err)
	}
	return stamp.Version, nil
}

// write persists the record atomically: marshal to a temp file in the same
// directory, then rename over the destination.
func (s *Store) write(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("account_%d_*.tmp", rec.AccountID))
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp record: %w", err)
	}

	if err := os.Rename(tmpName, s.path(rec.AccountID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace progress record: %w", err)
	}
	return nil
}
