package submission

import (
	"encoding/json"
	"time"

	"github.com/trezcool/bursar/core"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted
}

// Submission records a student's payment evidence for a selection of fees.
type Submission struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"student_id"`
	StudentName string          `json:"student_name"`
	Fees        json.RawMessage `json:"fees"`
	File        string          `json:"file"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at"` // UTC
}

// NewSubmission contains information needed to create a new Submission.
type NewSubmission struct {
	StudentID   string          `json:"student_id" validate:"notblank"`
	StudentName string          `json:"student_name"`
	Fees        json.RawMessage `json:"fees"`
	File        string          `json:"file" validate:"notblank"`
}

func (ns *NewSubmission) Validate(v *core.Validator) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.StudentName = core.CleanString(ns.StudentName)
	ns.File = core.CleanString(ns.File)
	if err := v.Struct(ns); err != nil {
		return err
	}
	if len(ns.Fees) > 0 && !json.Valid(ns.Fees) {
		return core.NewValidationError(nil, core.FieldError{Field: "fees", Error: "invalid JSON"})
	}
	return nil
}

// PaymentApproval accepts all pending submissions of a student and stores Meta on their profile.
type PaymentApproval struct {
	StudentID string          `json:"student_id" validate:"notblank"`
	Meta      json.RawMessage `json:"meta"`
}

func (pa *PaymentApproval) Validate(v *core.Validator) error {
	pa.StudentID = core.CleanString(pa.StudentID)
	if err := v.Struct(pa); err != nil {
		return err
	}
	if len(pa.Meta) > 0 && !json.Valid(pa.Meta) {
		return core.NewValidationError(nil, core.FieldError{Field: "meta", Error: "invalid JSON"})
	}
	return nil
}

// paymentAcceptedData feeds the payment_accepted email templates.
type paymentAcceptedData struct {
	Name     string
	Accepted int
}
