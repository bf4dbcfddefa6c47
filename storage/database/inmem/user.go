package inmemdb

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			return user.ErrUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.table[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Email != "" {
		for _, usr := range repo.db.table {
			if usr.Email == filter.Email {
				return *usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := repo.query()
	if filter == nil || len(filter.Roles) == 0 {
		return users, nil
	}

	filtered := make([]user.User, 0, len(users))
	for _, usr := range users {
		if hasAnyRolePrefix(usr, filter.Roles) {
			filtered = append(filtered, usr)
		}
	}
	return filtered, nil
}

func (repo *userRepository) UpdateUserMeta(_ context.Context, id string, meta json.RawMessage) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if len(meta) > 0 {
		usr.Meta = append(json.RawMessage(nil), meta...)
	} else {
		usr.Meta = nil
	}
	usr.UpdatedAt = core.NowFunc()
	return *usr, nil
}

func hasAnyRolePrefix(usr user.User, prefixes []string) bool {
	for _, role := range usr.Roles {
		for _, prefix := range prefixes {
			if strings.HasPrefix(role, prefix) {
				return true
			}
		}
	}
	return false
}
