package inmemdb

import (
	"context"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/fee"
)

type feeRepository struct {
	db *feeTable
}

var _ fee.Repository = (*feeRepository)(nil)

func NewFeeRepository(db *DB) *feeRepository {
	return &feeRepository{db: db.fee}
}

func (repo *feeRepository) QueryBillableFees(_ context.Context, page core.PageRequest) ([]fee.Fee, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	billable := make([]fee.Fee, 0, len(repo.db.table))
	for _, f := range repo.db.table {
		if f.Name != "" {
			billable = append(billable, f)
		}
	}

	total := len(billable)
	start := page.Offset()
	if start < 0 || start >= total {
		return []fee.Fee{}, total, nil
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return billable[start:end], total, nil
}
