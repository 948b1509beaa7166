package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/anvik-1/spacetime-crawler/internal/journal"
	"github.com/anvik-1/spacetime-crawler/pkg/failure"
	"github.com/anvik-1/spacetime-crawler/pkg/fileutil"
	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
	"github.com/anvik-1/spacetime-crawler/pkg/urlutil"
)

/*
Responsibilities
- Persist one JSON record per saved page
- Ensure deterministic filenames: <md5(canonical url)>.json
- Overwrite-safe reruns

The record keeps at most the first maxStoredWords words; the full word
count is preserved separately for post-crawl analysis.
*/

const maxStoredWords = 1000

type Sink interface {
	Write(record PageRecord) (WriteResult, failure.ClassifiedError)
	HashAlgo() hashutil.HashAlgo
}

type PageStore struct {
	dir      string
	hashAlgo hashutil.HashAlgo
	sink     journal.Sink
}

func NewPageStore(dir string, hashAlgo hashutil.HashAlgo, sink journal.Sink) PageStore {
	return PageStore{
		dir:      dir,
		hashAlgo: hashAlgo,
		sink:     sink,
	}
}

// HashAlgo returns the algorithm used for record content hashes.
func (s *PageStore) HashAlgo() hashutil.HashAlgo {
	return s.hashAlgo
}

func (s *PageStore) Write(record PageRecord) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(record)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		if s.sink != nil {
			s.sink.RecordError(
				time.Now(),
				"storage",
				"PageStore.Write",
				mapStorageErrorToJournalCause(storageError),
				err.Error(),
				[]journal.Attribute{
					journal.NewAttr(journal.AttrURL, record.URL),
					journal.NewAttr(journal.AttrWritePath, storageError.Path),
				},
			)
		}
		return WriteResult{}, storageError
	}
	if s.sink != nil {
		s.sink.RecordPageSaved(record.URL, writeResult.Path())
	}
	return writeResult, nil
}

func (s *PageStore) write(record PageRecord) (WriteResult, failure.ClassifiedError) {
	if len(record.Words) > maxStoredWords {
		record.Words = record.Words[:maxStoredWords]
	}

	parsed, parseErr := urlutil.NormalizeString(record.URL)
	if parseErr != nil {
		return WriteResult{}, &StorageError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}
	urlHash := hashutil.MD5Hex([]byte(parsed))

	if err := fileutil.EnsureDir(s.dir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: true, // disk pressure and permissions can clear up
			Cause:     ErrCausePathError,
			Path:      s.dir,
		}
	}

	encoded, encodeErr := json.Marshal(record)
	if encodeErr != nil {
		return WriteResult{}, &StorageError{
			Message:   encodeErr.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
		}
	}

	fullPath := filepath.Join(s.dir, urlHash+".json")
	if err := os.WriteFile(fullPath, encoded, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	return NewWriteResult(urlHash, fullPath), nil
}
