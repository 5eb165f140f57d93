package services

import (
	"testing"
	"time"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"

	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	byEmail map[string]domain.User
	byID    map[string]domain.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byEmail: make(map[string]domain.User),
		byID:    make(map[string]domain.User),
	}
}

func (f *fakeUserRepository) CreateUser(email, hashedPassword string) (string, error) {
	if _, exists := f.byEmail[email]; exists {
		return "", errors.ErrUserAlreadyExists
	}
	user := domain.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}
	f.byEmail[email] = user
	f.byID[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserRepository) GetUserByEmail(email string) (domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, errors.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) GetUserByID(id string) (domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return domain.User{}, errors.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) UpdateProfile(user domain.User) error {
	existing, ok := f.byID[user.ID]
	if !ok {
		return errors.ErrNotFound
	}
	user.Email = existing.Email
	user.PasswordHash = existing.PasswordHash
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func newAuthService() (IAuthService, *fakeUserRepository) {
	repo := newFakeUserRepository()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(repo, issuer), repo
}

func TestAuthService_Register_Then_Login(t *testing.T) {
	req := require.New(t)
	service, repo := newAuthService()

	// Given a valid registration
	token, err := service.Register("alice@example.com", "Str0ng!Passw0rd")
	req.NoError(err)
	req.NotEmpty(token)

	// The stored hash is not the plain password
	stored, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.NotEqual("Str0ng!Passw0rd", stored.PasswordHash)

	// When logging in with the same credentials
	loginToken, err := service.Login("alice@example.com", "Str0ng!Passw0rd")
	req.NoError(err)
	req.NotEmpty(loginToken)
}

func TestAuthService_Register_Rejects_Duplicates(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()

	_, err := service.Register("alice@example.com", "Str0ng!Passw0rd")
	req.NoError(err)

	_, err = service.Register("alice@example.com", "An0ther!Passw0rd")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Register_Rejects_Weak_Password(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()

	_, err := service.Register("alice@example.com", "short")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_Login_Never_Reveals_Which_Part_Failed(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthService()

	_, err := service.Register("alice@example.com", "Str0ng!Passw0rd")
	req.NoError(err)

	// Unknown email and wrong password collapse to the same error
	_, err = service.Login("nobody@example.com", "whatever")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, err = service.Login("alice@example.com", "wrong-password")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
