package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/fee"
)

type feeRow struct {
	ID        string      `db:"id"`
	Name      null.String `db:"name"`
	Amount    int64       `db:"amount"`
	Currency  string      `db:"currency"`
	CreatedAt int64       `db:"created_at"`
}

type feeRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *sqlx.DB) *feeRepository {
	return &feeRepository{db: db, sb: builder(db)}
}

func billable() sq.Sqlizer {
	return sq.And{sq.NotEq{"name": nil}, sq.NotEq{"name": ""}}
}

func (repo feeRepository) QueryBillableFees(ctx context.Context, page core.PageRequest) ([]fee.Fee, int, error) {
	q, args, err := repo.sb.Select("COUNT(*)").From(feesTable).Where(billable()).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "building query")
	}
	var total int
	if err = repo.db.GetContext(ctx, &total, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting fees")
	}
	if total == 0 {
		return []fee.Fee{}, 0, nil
	}

	q, args, err = repo.sb.Select("id", "name", "amount", "currency", "created_at").
		From(feesTable).
		Where(billable()).
		OrderBy("created_at", "id").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "building query")
	}
	var rows []feeRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying fees")
	}

	fees := make([]fee.Fee, 0, len(rows))
	for _, row := range rows {
		fees = append(fees, fee.Fee{
			ID:        row.ID,
			Name:      row.Name.String,
			Amount:    row.Amount,
			Currency:  row.Currency,
			CreatedAt: fromMillis(row.CreatedAt),
		})
	}
	return fees, total, nil
}
