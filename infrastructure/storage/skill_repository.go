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

type ISkillRepository interface {
	Create(skill domain.Skill) error
	Get(id uuid.UUID) (domain.Skill, error)
	ListAll() ([]domain.Skill, error)
	ListByUser(userID string) ([]domain.Skill, error)
}

// SkillRepository persists skills in BadgerDB under "skill:<id>".
type SkillRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSkillRepository(db *badger.DB, log *slog.Logger) ISkillRepository {
	return &SkillRepository{db: db, log: log}
}

func skillKey(id uuid.UUID) []byte {
	return []byte("skill:" + id.String())
}

func (s SkillRepository) Create(skill domain.Skill) error {
	data, err := json.Marshal(skill)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(skillKey(skill.ID), data)
	})
}

func (s SkillRepository) Get(id uuid.UUID) (domain.Skill, error) {
	var skill domain.Skill
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(skillKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &skill)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Skill{}, errors.ErrNotFound
	}
	return skill, err
}

func (s SkillRepository) ListAll() ([]domain.Skill, error) {
	return s.list(func(domain.Skill) bool { return true })
}

func (s SkillRepository) ListByUser(userID string) ([]domain.Skill, error) {
	return s.list(func(skill domain.Skill) bool { return skill.UserID == userID })
}

func (s SkillRepository) list(keep func(domain.Skill) bool) ([]domain.Skill, error) {
	var skills []domain.Skill
	prefix := []byte("skill:")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var skill domain.Skill
				if err := json.Unmarshal(val, &skill); err != nil {
					s.log.Warn("Skipping corrupt skill record", "error", err)
					return nil
				}
				if keep(skill) {
					skills = append(skills, skill)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return skills, err
}
