package services

import (
	"testing"

	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/infrastructure/storage"

	"github.com/mama165/sdk-go/database"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newSkillService(t *testing.T) *SkillService {
	t.Helper()
	_, log, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		database.CleanupDB(badgerDB, blugeWriter)
	})
	repo := storage.NewSkillRepository(badgerDB, log)
	index := storage.NewSkillIndex(blugeWriter, log)
	return NewSkillService(log, repo, index)
}

func TestSkillService_Create_Then_Search(t *testing.T) {
	req := require.New(t)
	service := newSkillService(t)

	created, err := service.Create("alice", CreateSkillCommand{
		Name:        "Sourdough baking",
		Category:    "Cooking",
		Description: "Starter care, shaping and oven spring",
	})
	req.NoError(err)

	_, err = service.Create("bob", CreateSkillCommand{
		Name:     "Bicycle repair",
		Category: "Mechanics",
	})
	req.NoError(err)

	// Search by a term only present in the first skill's description
	found, err := service.Search(t.Context(), "oven", 10)
	req.NoError(err)
	req.Len(found, 1)
	req.Equal(created.ID, found[0].ID)
}

func TestSkillService_Create_Validation(t *testing.T) {
	req := require.New(t)
	service := newSkillService(t)

	_, err := service.Create("alice", CreateSkillCommand{Name: "", Category: "Cooking"})
	req.ErrorIs(err, errors.ErrValidation)

	_, err = service.Create("alice", CreateSkillCommand{Name: "Chess", Category: ""})
	req.ErrorIs(err, errors.ErrValidation)
}

func TestSkillService_ListOffered_Filters_By_Owner(t *testing.T) {
	req := require.New(t)
	service := newSkillService(t)

	_, err := service.Create("alice", CreateSkillCommand{Name: "Chess", Category: "Games"})
	req.NoError(err)
	_, err = service.Create("alice", CreateSkillCommand{Name: "Go", Category: "Games"})
	req.NoError(err)
	_, err = service.Create("bob", CreateSkillCommand{Name: "Juggling", Category: "Circus"})
	req.NoError(err)

	offered, err := service.ListOffered("alice")
	req.NoError(err)
	names := lo.Map(offered, func(s domain.Skill, _ int) string { return s.Name })
	req.ElementsMatch([]string{"Chess", "Go"}, names)

	all, err := service.ListAll()
	req.NoError(err)
	req.Len(all, 3)
}

func TestSkillService_Search_Empty_Index(t *testing.T) {
	req := require.New(t)
	service := newSkillService(t)

	found, err := service.Search(t.Context(), "anything", 5)
	req.NoError(err)
	req.Empty(found)
}
