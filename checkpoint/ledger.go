package checkpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// ErrCorruptEntry indicates a ledger value that cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt ledger entry")

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Ledger is a durable record of uploaded vectors.
type Ledger struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens the ledger database at path, creating the directory if needed.
// With inMemory set, nothing touches disk; that mode is for tests.
func Open(path string, inMemory bool) (*Ledger, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(path, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(path)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		db:     db,
		logger: slog.Default().With("component", "checkpoint-ledger"),
	}, nil
}

// Mark records that vectorID was uploaded to target with the given content
// checksum.
func (l *Ledger) Mark(target, vectorID string, checksum uint64) error {
	return l.MarkBatch(target, map[string]uint64{vectorID: checksum})
}

// MarkBatch records a batch of uploads in one transaction.
func (l *Ledger) MarkBatch(target string, checksums map[string]uint64) error {
	now := time.Now()

	err := l.db.Update(func(tx *badger.Txn) error {
		for vectorID, checksum := range checksums {
			value := encodeEntry(entry{Checksum: checksum, UploadedAt: now})
			if err := tx.Set(entryKey(target, vectorID), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark %d uploads for %s: %w", len(checksums), target, err)
	}
	return nil
}

// IsUploaded reports whether vectorID was already uploaded to target with
// exactly this content checksum. A marked id whose stored checksum differs
// reports false, forcing re-upload of changed content.
func (l *Ledger) IsUploaded(target, vectorID string, checksum uint64) (bool, error) {
	var uploaded bool

	err := l.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(entryKey(target, vectorID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			e, err := decodeEntry(val)
			if err != nil {
				// A corrupt entry is treated as absent; the upload
				// re-runs and overwrites it.
				l.logger.Warn("dropping corrupt ledger entry", "target", target, "id", vectorID, "err", err)
				return nil
			}
			uploaded = e.Checksum == checksum
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("check upload record for %s/%s: %w", target, vectorID, err)
	}
	return uploaded, nil
}

// Count returns the number of recorded uploads for target.
func (l *Ledger) Count(target string) (int, error) {
	prefix := []byte(fmt.Sprintf("%s:%s:", keyPrefix, target))
	count := 0

	err := l.db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count upload records for %s: %w", target, err)
	}
	return count, nil
}

// Clear removes every record for target, forcing the next run to upload
// from scratch.
func (l *Ledger) Clear(target string) error {
	prefix := []byte(fmt.Sprintf("%s:%s:", keyPrefix, target))

	err := l.db.Update(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear upload records for %s: %w", target, err)
	}
	return nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
