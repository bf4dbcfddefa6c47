package fee

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/bursar/core"
)

// Repository is the read side of the fee catalog.
type Repository interface {
	// QueryBillableFees returns one page of fees having a non-empty name, oldest first,
	// along with the total number of such fees.
	QueryBillableFees(ctx context.Context, page core.PageRequest) ([]Fee, int, error)
}

type Service struct {
	repo           Repository
	defaultPerPage int
	maxPerPage     int
}

func NewService(repo Repository, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &Service{
		repo:           repo,
		defaultPerPage: conf.Billing.DefaultPerPage,
		maxPerPage:     conf.Billing.MaxPerPage,
	}
}

// List returns the requested page of billable fees.
func (svc *Service) List(ctx context.Context, page core.PageRequest) (Page, error) {
	page.Clean(svc.defaultPerPage, svc.maxPerPage)

	fees, total, err := svc.repo.QueryBillableFees(ctx, page)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying billable fees")
	}
	if fees == nil {
		fees = []Fee{}
	}
	return Page{Items: fees, Meta: core.NewPageMeta(page, total)}, nil
}
