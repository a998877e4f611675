package badgerdb

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/iamasit07/dm-chat/internal/domain"
)

const seqBandwidth = 100

// Store owns the badger handle and the sequences shared by the repositories.
type Store struct {
	db     *badger.DB
	userID *badger.Sequence
	msgSeq *badger.Sequence
}

// Open opens (or creates) the database at path. An empty path keeps everything in memory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open error: %w", err)
	}
	return NewStore(db)
}

func NewStore(db *badger.DB) (*Store, error) {
	userID, err := db.GetSequence([]byte("seq:users"), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("user sequence: %w", err)
	}
	msgSeq, err := db.GetSequence([]byte("seq:messages"), seqBandwidth)
	if err != nil {
		_ = userID.Release()
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &Store{db: db, userID: userID, msgSeq: msgSeq}, nil
}

// Close returns the unused sequence leases and closes the database.
func (s *Store) Close() error {
	errs := []error{s.userID.Release(), s.msgSeq.Release(), s.db.Close()}
	return errors.Join(errs...)
}

// next returns a strictly positive value from seq
func next(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return domain.ErrNotFound
	case errors.As(err, new(domain.Error)):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}

// RunGC rewrites value log files until badger reports nothing left to reclaim.
// It returns the number of files rewritten.
func (s *Store) RunGC(discardRatio float64) (int, error) {
	rewritten := 0
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, err
		}
		rewritten++
	}
}
