package fee_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bursar/core"
	. "github.com/trezcool/bursar/core/fee"
	inmemdb "github.com/trezcool/bursar/storage/database/inmem"
	"github.com/trezcool/bursar/testutil"
)

func TestService_List(t *testing.T) {
	db := inmemdb.Open()
	conf := testutil.Config()
	conf.Billing = core.BillingConfig{DefaultPerPage: 2, MaxPerPage: 3}
	svc := NewService(inmemdb.NewFeeRepository(db), conf)

	now := time.Now().UTC()
	db.SeedFees(
		Fee{ID: "f1", Name: "Tuition", Amount: 150000, Currency: "USD", CreatedAt: now},
		Fee{ID: "f2", Amount: 10, Currency: "USD", CreatedAt: now},
		Fee{ID: "f3", Name: "Library", Amount: 2500, Currency: "USD", CreatedAt: now},
		Fee{ID: "f4", Name: "Lab", Amount: 4000, Currency: "USD", CreatedAt: now},
		Fee{ID: "f5", Name: "Sports", Amount: 1000, Currency: "USD", CreatedAt: now},
	)

	tests := []struct {
		name     string
		page     core.PageRequest
		wantIDs  []string
		wantMeta core.PageMeta
	}{
		{name: "defaults", wantIDs: []string{"f1", "f3"}, wantMeta: core.PageMeta{CurrentPage: 1, PerPage: 2, Total: 4, LastPage: 2}},
		{name: "last page", page: core.PageRequest{Page: 2}, wantIDs: []string{"f4", "f5"}, wantMeta: core.PageMeta{CurrentPage: 2, PerPage: 2, Total: 4, LastPage: 2}},
		{name: "capped", page: core.PageRequest{Page: 1, PerPage: 50}, wantIDs: []string{"f1", "f3", "f4"}, wantMeta: core.PageMeta{CurrentPage: 1, PerPage: 3, Total: 4, LastPage: 2}},
		{name: "past the end", page: core.PageRequest{Page: 9}, wantIDs: []string{}, wantMeta: core.PageMeta{CurrentPage: 9, PerPage: 2, Total: 4, LastPage: 2}},
		{name: "huge page", page: core.PageRequest{Page: math.MaxInt}, wantIDs: []string{}, wantMeta: core.PageMeta{CurrentPage: math.MaxInt / 2, PerPage: 2, Total: 4, LastPage: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(context.Background(), tt.page)
			require.NoError(t, err)

			ids := make([]string, 0, len(page.Items))
			for _, f := range page.Items {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantMeta, page.Meta)
		})
	}
}
