package storage

import (
	"context"
	"log/slog"

	"github.com/destinyy00/skillswap/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

// SkillIndex maintains a Bluge full-text index over skill names, categories
// and descriptions. Writes happen synchronously on skill creation; the
// catalog is small and read-mostly so there is no batching.
type SkillIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSkillIndex(writer *bluge.Writer, log *slog.Logger) *SkillIndex {
	return &SkillIndex{writer: writer, log: log}
}

// Index adds or replaces the skill's document.
func (s *SkillIndex) Index(skill domain.Skill) error {
	doc := bluge.NewDocument(skill.ID.String()).
		AddField(bluge.NewTextField("name", skill.Name).StoreValue()).
		AddField(bluge.NewTextField("category", skill.Category)).
		AddField(bluge.NewTextField("description", skill.Description))

	return s.writer.Update(doc.ID(), doc)
}

// Search returns the ids of up to limit skills matching the query terms in
// any indexed field, best match first.
func (s *SkillIndex) Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	query := bluge.NewBooleanQuery().AddShould(
		bluge.NewMatchQuery(terms).SetField("name"),
		bluge.NewMatchQuery(terms).SetField("category"),
		bluge.NewMatchQuery(terms).SetField("description"),
	)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := iterator.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				} else {
					s.log.Warn("Skipping document with non-uuid id", "id", string(value))
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
