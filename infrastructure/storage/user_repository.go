package storage

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id string) (domain.User, error)
	UpdateProfile(user domain.User) error
}

// UserRepository persists users in BadgerDB. Records live under
// "user:id:<id>"; "user:email:<email>" is a secondary index pointing at the
// id, so both login (by email) and profile lookups (by id) are single gets.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(id string) []byte    { return []byte("user:id:" + id) }
func emailKey(email string) []byte { return []byte("user:email:" + email) }

// CreateUser persists the user with an already-hashed password and returns
// the newly generated user ID.
func (u UserRepository) CreateUser(email, hashedPassword string) (string, error) {
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := marshalUser(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})

	return user.ID, err
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.User{}, errors.ErrNotFound
		}
		return domain.User{}, err
	}
	return u.GetUserByID(id)
}

func (u UserRepository) GetUserByID(id string) (domain.User, error) {
	var record storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrNotFound
	}
	user := record.User
	user.PasswordHash = record.Hash
	return user, err
}

// UpdateProfile overwrites the stored record. Email and password hash are
// carried over from the existing record; only profile fields change here.
func (u UserRepository) UpdateProfile(user domain.User) error {
	existing, err := u.GetUserByID(user.ID)
	if err != nil {
		return err
	}
	user.Email = existing.Email
	user.PasswordHash = existing.PasswordHash
	user.Roles = existing.Roles
	user.CreatedAt = existing.CreatedAt

	data, err := marshalUser(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
}

// storedUser is the on-disk shape. It carries the password hash, which the
// domain type hides from its public JSON representation.
type storedUser struct {
	domain.User
	Hash string `json:"passwordHash"`
}

func marshalUser(user domain.User) ([]byte, error) {
	return json.Marshal(storedUser{User: user, Hash: user.PasswordHash})
}
