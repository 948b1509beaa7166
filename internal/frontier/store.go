package frontier

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"
)

var frontierBucket = []byte("frontier")

// Entry is the durable record of one discovered URL, keyed in the store
// by the 32-char hex MD5 of its canonical string.
type Entry struct {
	URL       string `json:"url"`
	Completed bool   `json:"completed"`
}

/*
Store is the durable frontier state: urlhash -> (url, completed).

bbolt commits (and fsyncs) on every Update, which gives the required
synchronous write-through per mutation: a URL accepted by AddURL is on
disk before the call returns, and survives a process crash.
*/
type Store struct {
	db *bolt.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
		}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(frontierBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
		}
	}

	return &Store{db: db}, nil
}

// Put writes (url, completed) under urlhash and syncs before returning.
func (s *Store) Put(urlhash string, entry Entry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
		}
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(frontierBucket).Put([]byte(urlhash), encoded)
	})
	if err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return nil
}

// Get loads the entry stored under urlhash. The second return value
// reports presence.
func (s *Store) Get(urlhash string) (Entry, bool, error) {
	var entry Entry
	var found bool

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(frontierBucket).Get([]byte(urlhash))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return Entry{}, false, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCorruptEntry,
		}
	}
	return entry, found, nil
}

// Has reports whether urlhash is present without decoding the entry.
func (s *Store) Has(urlhash string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(frontierBucket).Get([]byte(urlhash)) != nil
		return nil
	})
	if err != nil {
		return false, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
		}
	}
	return found, nil
}

// ForEach visits every stored entry.
func (s *Store) ForEach(fn func(urlhash string, entry Entry) error) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(frontierBucket).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			return fn(string(k), entry)
		})
	})
	if err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
		}
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(frontierBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
		}
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
