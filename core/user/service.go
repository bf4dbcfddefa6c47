package user

import (
	"context"
	"encoding/json"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/bursar/core"
)

var (
	// errors
	ErrNotFound   = errors.New("user not found")
	ErrUserExists = errors.New("a user with this email already exists")
)

type Repository interface {
	CheckEmailUniqueness(ctx context.Context, email string) error
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUser(ctx context.Context, filter GetFilter) (User, error)
	// QueryUsers returns all users when filter is nil.
	QueryUsers(ctx context.Context, filter *QueryFilter) ([]User, error)
	// UpdateUserMeta replaces the stored meta of the user verbatim.
	UpdateUserMeta(ctx context.Context, id string, meta json.RawMessage) (User, error)
}

// Service is the user & role directory.
type Service struct {
	repo     Repository
	validate *core.Validator
}

func NewService(repo Repository, validate *core.Validator) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	if err := svc.repo.CheckEmailUniqueness(ctx, nu.Email); err != nil {
		if err == ErrUserExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := core.NowFunc()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: core.CleanString(id)})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter)
}

// Capabilities looks up the role flags of a user in one call.
func (svc *Service) Capabilities(ctx context.Context, id string) (Capabilities, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return Capabilities{}, err
	}
	return usr.Capabilities(), nil
}

// UpdateMeta stores meta verbatim on the user's profile.
func (svc *Service) UpdateMeta(ctx context.Context, id string, meta json.RawMessage) (User, error) {
	return svc.repo.UpdateUserMeta(ctx, id, meta)
}
