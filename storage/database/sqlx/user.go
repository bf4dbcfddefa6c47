package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/user"
)

var userColumns = []string{"id", "name", "email", "roles", "meta", "created_at", "updated_at"}

type userRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Email     string      `db:"email"`
	Roles     string      `db:"roles"`
	Meta      null.String `db:"meta"`
	CreatedAt int64       `db:"created_at"`
	UpdatedAt int64       `db:"updated_at"`
}

type userRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db, sb: builder(db)}
}

func (repo userRepository) toRow(usr user.User) (userRow, error) {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return userRow{}, errors.Wrap(err, "encoding roles")
	}
	return userRow{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     usr.Email,
		Roles:     string(rolesJSON),
		Meta:      jsonText(usr.Meta),
		CreatedAt: toMillis(usr.CreatedAt),
		UpdatedAt: toMillis(usr.UpdatedAt),
	}, nil
}

func (repo userRepository) fromRow(row userRow) (user.User, error) {
	usr := user.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Meta:      rawJSON(row.Meta),
		CreatedAt: fromMillis(row.CreatedAt),
		UpdatedAt: fromMillis(row.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(row.Roles), &usr.Roles); err != nil {
		return user.User{}, errors.Wrap(err, "decoding roles")
	}
	return usr, nil
}

// trapNoRowsErr maps sql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	q, args, err := repo.sb.Select("COUNT(*)").From(usersTable).Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if n > 0 {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row, err := repo.toRow(usr)
	if err != nil {
		return user.User{}, err
	}

	q, args, err := repo.sb.Insert(usersTable).
		Columns(userColumns...).
		Values(row.ID, row.Name, row.Email, row.Roles, row.Meta, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromRow(row)
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	sel := repo.sb.Select(userColumns...).From(usersTable)
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		sel = sel.Where(sq.Eq{"id": filter.ID})
	case filter.Email != "":
		sel = sel.Where(sq.Eq{"email": filter.Email})
	default:
		return user.User{}, user.ErrNotFound
	}

	q, args, err := sel.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var row userRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return repo.fromRow(row)
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	sel := repo.sb.Select(userColumns...).From(usersTable).OrderBy("created_at", "id")

	// users with any role that starts with any of the provided roles
	if filter != nil && len(filter.Roles) > 0 {
		or := make(sq.Or, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			or = append(or, sq.Like{"roles": `%"` + role + `%`})
		}
		sel = sel.Where(or)
	}

	q, args, err := sel.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr, err := repo.fromRow(row)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo userRepository) UpdateUserMeta(ctx context.Context, id string, meta json.RawMessage) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	q, args, err := repo.sb.Update(usersTable).
		Set("meta", jsonText(meta)).
		Set("updated_at", toMillis(core.NowFunc())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user meta")
	}
	if n, err := res.RowsAffected(); err != nil {
		return user.User{}, errors.Wrap(err, "updating user meta")
	} else if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: id})
}
