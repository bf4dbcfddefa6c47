package fee

import (
	"time"

	"github.com/trezcool/bursar/core"
)

// Fee is a billable line item of the fee catalog. Amount is in minor units of Currency.
type Fee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Page is one page of billable fees.
type Page struct {
	Items []Fee         `json:"items"`
	Meta  core.PageMeta `json:"meta"`
}
