package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CreateSkillCommand struct {
	Name        string `validate:"required,max=120"`
	Category    string `validate:"required,max=60"`
	Description string `validate:"max=2000"`
}

type ISkillService interface {
	Create(userID string, cmd CreateSkillCommand) (domain.Skill, error)
	ListAll() ([]domain.Skill, error)
	ListOffered(userID string) ([]domain.Skill, error)
	Search(ctx context.Context, terms string, limit int) ([]domain.Skill, error)
}

type SkillService struct {
	log    *slog.Logger
	skills storage.ISkillRepository
	index  *storage.SkillIndex
}

func NewSkillService(log *slog.Logger, skills storage.ISkillRepository, index *storage.SkillIndex) *SkillService {
	return &SkillService{log: log, skills: skills, index: index}
}

func (s *SkillService) Create(userID string, cmd CreateSkillCommand) (domain.Skill, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Skill{}, errors.ErrValidation
	}

	skill := domain.Skill{
		ID:          uuid.New(),
		Name:        cmd.Name,
		Category:    cmd.Category,
		Description: cmd.Description,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.skills.Create(skill); err != nil {
		return domain.Skill{}, err
	}

	// The search index lags rather than blocks the catalog: a failed index
	// write is logged and the skill stays available through plain listing.
	if err := s.index.Index(skill); err != nil {
		s.log.Warn("Skill created but not indexed", "skill_id", skill.ID, "error", err)
	}

	return skill, nil
}

func (s *SkillService) ListAll() ([]domain.Skill, error) {
	return s.skills.ListAll()
}

func (s *SkillService) ListOffered(userID string) ([]domain.Skill, error) {
	return s.skills.ListByUser(userID)
}

// Search resolves index hits back to full records, dropping ids whose record
// disappeared between index and store reads.
func (s *SkillService) Search(ctx context.Context, terms string, limit int) ([]domain.Skill, error) {
	ids, err := s.index.Search(ctx, terms, limit)
	if err != nil {
		return nil, err
	}

	skills := lo.FilterMap(ids, func(id uuid.UUID, _ int) (domain.Skill, bool) {
		skill, err := s.skills.Get(id)
		if err != nil {
			s.log.Debug("Index hit without stored record", "skill_id", id)
			return domain.Skill{}, false
		}
		return skill, true
	})
	return skills, nil
}
