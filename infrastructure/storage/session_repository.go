package storage

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type ISessionRepository interface {
	Create(session domain.Session) error
	Get(id uuid.UUID) (domain.Session, error)
	Update(session domain.Session) error
	ListByParticipant(subjectID string) ([]domain.Session, error)
}

// SessionRepository persists sessions in BadgerDB under "session:<id>".
// Listing walks the prefix and filters by participant; the expected volume
// per deployment stays small enough that a secondary index is not worth its
// bookkeeping.
type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) ISessionRepository {
	return &SessionRepository{db: db, log: log}
}

func sessionKey(id uuid.UUID) []byte {
	return []byte("session:" + id.String())
}

func (s SessionRepository) Create(session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.ID), data)
	})
}

func (s SessionRepository) Get(id uuid.UUID) (domain.Session, error) {
	var session domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Session{}, errors.ErrNotFound
	}
	return session, err
}

func (s SessionRepository) Update(session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(sessionKey(session.ID)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		return txn.Set(sessionKey(session.ID), data)
	})
}

// ListByParticipant returns every session where subjectID is either the
// requesting user or the host.
func (s SessionRepository) ListByParticipant(subjectID string) ([]domain.Session, error) {
	var sessions []domain.Session
	prefix := []byte("session:")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session domain.Session
				if err := json.Unmarshal(val, &session); err != nil {
					s.log.Warn("Skipping corrupt session record", "error", err)
					return nil
				}
				if session.Involves(subjectID) {
					sessions = append(sessions, session)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return sessions, err
}
