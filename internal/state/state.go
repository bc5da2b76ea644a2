// Package state keeps small pieces of durable process state in a bolt
// database: the pointer to the active record and one-shot flags.
package state

import (
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/itimeapp/itime/internal/apperr"
	"github.com/itimeapp/itime/internal/timeutil"
)

const (
	pointerBucket = "pointer"
	flagsBucket   = "flags"

	keyActiveRecordID = "active_record_id"
	keyLastUpdateTime = "last_update_time"
)

// Flag names.
const (
	FlagPresetsInitialized   = "preset_categories_initialized"
	FlagDuplicatesReconciled = "duplicate_categories_reconciled"
)

var errAlreadyRunning = &apperr.Error{
	Message: "is iTime already running? Only one instance can access %s at a time",
}

// Pointer identifies the active record. UpdatedAt is advisory only.
type Pointer struct {
	UpdatedAt time.Time
	RecordID  string
}

// Store is a bolt-backed state store.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the state database at path and locks it.
func Open(path string) (*Store, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, berrors.ErrDatabaseOpen) ||
			errors.Is(err, berrors.ErrTimeout) {
			return nil, errAlreadyRunning.Fmt(path)
		}

		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{pointerBucket, flagsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetActive records id as the active record.
func (s *Store) SetActive(id string, at time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pointerBucket))

		if err := b.Put([]byte(keyActiveRecordID), []byte(id)); err != nil {
			return err
		}

		return b.Put([]byte(keyLastUpdateTime), timeutil.ToKey(at))
	})
}

// Touch refreshes the advisory timestamp. It does nothing when no record is
// active.
func (s *Store) Touch(at time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pointerBucket))

		if len(b.Get([]byte(keyActiveRecordID))) == 0 {
			return nil
		}

		return b.Put([]byte(keyLastUpdateTime), timeutil.ToKey(at))
	})
}

// Active returns the stored pointer, if any.
func (s *Store) Active() (Pointer, bool, error) {
	var (
		p  Pointer
		ok bool
	)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pointerBucket))

		id := b.Get([]byte(keyActiveRecordID))
		if len(id) == 0 {
			return nil
		}

		p.RecordID = string(id)
		ok = true

		if v := b.Get([]byte(keyLastUpdateTime)); len(v) > 0 {
			t, err := timeutil.FromKey(v)
			if err != nil {
				return err
			}

			p.UpdatedAt = t
		}

		return nil
	})

	return p, ok, err
}

// Clear removes the pointer.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pointerBucket))

		if err := b.Delete([]byte(keyActiveRecordID)); err != nil {
			return err
		}

		return b.Delete([]byte(keyLastUpdateTime))
	})
}

// Flag reports whether the named flag has been set.
func (s *Store) Flag(name string) (bool, error) {
	var set bool

	err := s.db.View(func(tx *bolt.Tx) error {
		set = len(tx.Bucket([]byte(flagsBucket)).Get([]byte(name))) > 0
		return nil
	})

	return set, err
}

func (s *Store) SetFlag(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(flagsBucket)).Put([]byte(name), []byte("1"))
	})
}
