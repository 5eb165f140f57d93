package storage

import (
	"testing"

	"github.com/destinyy00/skillswap/errors"

	"github.com/mama165/sdk-go/database"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create_And_Lookup(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)

	// When a user registers
	id, err := repo.CreateUser("alice@example.com", "$argon2id$fake-hash")
	req.NoError(err)
	req.NotEmpty(id)

	// Then both lookup paths find the same record
	byEmail, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("$argon2id$fake-hash", byEmail.PasswordHash)

	byID, err := repo.GetUserByID(id)
	req.NoError(err)
	req.Equal("alice@example.com", byID.Email)
	req.Equal([]string{"user"}, byID.Roles)
}

func TestUserRepository_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)

	_, err = repo.CreateUser("alice@example.com", "hash1")
	req.NoError(err)

	// When the same email registers again
	_, err = repo.CreateUser("alice@example.com", "hash2")

	// Then the conflict is reported
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_Unknown_User(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)

	_, err = repo.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repo.GetUserByID("missing-id")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestUserRepository_UpdateProfile_Keeps_Credentials(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)

	id, err := repo.CreateUser("alice@example.com", "secret-hash")
	req.NoError(err)

	user, err := repo.GetUserByID(id)
	req.NoError(err)
	user.Name = "Alice"
	user.Location = "Lagos"
	user.Email = "tampered@example.com" // must be ignored

	req.NoError(repo.UpdateProfile(user))

	updated, err := repo.GetUserByID(id)
	req.NoError(err)
	req.Equal("Alice", updated.Name)
	req.Equal("Lagos", updated.Location)
	req.Equal("alice@example.com", updated.Email)
	req.Equal("secret-hash", updated.PasswordHash)
}
