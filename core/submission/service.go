package submission

import (
	"context"
	"encoding/json"
	"net/mail"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/user"
)

// Repository is the submission store. Every method is atomic on its own.
type Repository interface {
	// Insert assigns the ID and stores sub.
	Insert(ctx context.Context, sub Submission) (Submission, error)
	// FindByStudent returns the student's submissions, newest first.
	FindByStudent(ctx context.Context, studentID string) ([]Submission, error)
	// FindByStatus returns submissions in the given status, newest first.
	FindByStatus(ctx context.Context, status Status) ([]Submission, error)
	// UpdateStatusForStudent moves every submission of the student in status `from` to `to`
	// and returns the number of rows changed.
	UpdateStatusForStudent(ctx context.Context, studentID string, from, to Status) (int, error)
	Count(ctx context.Context, status Status) (int, error)
}

// Directory is the part of the user directory the workflow depends on.
type Directory interface {
	Capabilities(ctx context.Context, id string) (user.Capabilities, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateMeta(ctx context.Context, id string, meta json.RawMessage) (user.User, error)
}

var _ Directory = (*user.Service)(nil)

// Service is the fee-submission workflow engine.
type Service struct {
	repo     Repository
	dir      Directory
	validate *core.Validator
	mailSvc  core.EmailService
	logger   core.Logger
}

func NewService(
	repo Repository,
	dir Directory,
	validate *core.Validator,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{
		repo:     repo,
		dir:      dir,
		validate: validate,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// actorCapabilities looks up the actor. An unknown actor has no capability.
func (svc *Service) actorCapabilities(ctx context.Context, actorID, action string) (user.Capabilities, error) {
	caps, err := svc.dir.Capabilities(ctx, actorID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.Capabilities{}, core.NewAuthorizationError(action)
		}
		return user.Capabilities{}, errors.Wrap(err, "looking up actor capabilities")
	}
	return caps, nil
}

// student resolves a user holding the student role.
func (svc *Service) student(ctx context.Context, id string) (user.User, error) {
	usr, err := svc.dir.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewNotFoundError("student", id)
		}
		return user.User{}, errors.Wrap(err, "getting student")
	}
	if !usr.IsStudent() {
		return user.User{}, core.NewNotFoundError("student", id)
	}
	return usr, nil
}

// Create records a new pending submission. Students may only submit for themselves.
func (svc *Service) Create(ctx context.Context, actorID string, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Submission{}, err
	}

	caps, err := svc.actorCapabilities(ctx, actorID, "submit fees")
	if err != nil {
		return Submission{}, err
	}
	if !caps.CanActFor(ns.StudentID) {
		return Submission{}, core.NewAuthorizationError("submit fees")
	}

	stud, err := svc.student(ctx, ns.StudentID)
	if err != nil {
		return Submission{}, err
	}

	name := ns.StudentName
	if name == "" {
		name = stud.Name
	}
	now := core.NowFunc()
	sub := Submission{
		StudentID:   stud.ID,
		StudentName: name,
		Fees:        ns.Fees,
		File:        ns.File,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sub, err = svc.repo.Insert(ctx, sub)
	if err != nil {
		return Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

// Approve stores the payment meta on the student's profile, then accepts all of their pending
// submissions. It returns the number of submissions accepted.
//
// The two writes are not atomic together: when accepting fails after the meta was stored,
// the inconsistency is logged and the error returned.
func (svc *Service) Approve(ctx context.Context, actorID string, pa PaymentApproval) (int, error) {
	if err := pa.Validate(svc.validate); err != nil {
		return 0, err
	}

	caps, err := svc.actorCapabilities(ctx, actorID, "approve payments")
	if err != nil {
		return 0, err
	}
	if !caps.CanReview() {
		return 0, core.NewAuthorizationError("approve payments")
	}

	stud, err := svc.student(ctx, pa.StudentID)
	if err != nil {
		return 0, err
	}

	if _, err = svc.dir.UpdateMeta(ctx, stud.ID, pa.Meta); err != nil {
		return 0, errors.Wrap(err, "updating student meta")
	}

	accepted, err := svc.repo.UpdateStatusForStudent(ctx, stud.ID, StatusPending, StatusAccepted)
	if err != nil {
		err = errors.Wrap(err, "accepting pending submissions")
		svc.logger.Error(
			"payment meta stored but submissions not accepted",
			err,
			map[string]interface{}{"student_id": stud.ID, "meta": string(pa.Meta), "actor_id": actorID},
		)
		return 0, err
	}

	if accepted > 0 && stud.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{stud.Address()},
			Subject:      "Payment accepted",
			TemplateName: "payment_accepted",
			TemplateData: paymentAcceptedData{Name: stud.Name, Accepted: accepted},
		})
	}
	return accepted, nil
}

// History lists a student's submissions. Students may only read their own.
func (svc *Service) History(ctx context.Context, actorID, studentID string) ([]Submission, error) {
	studentID = core.CleanString(studentID)

	caps, err := svc.actorCapabilities(ctx, actorID, "read billing history")
	if err != nil {
		return nil, err
	}
	if !caps.CanActFor(studentID) {
		return nil, core.NewAuthorizationError("read billing history")
	}

	stud, err := svc.student(ctx, studentID)
	if err != nil {
		return nil, err
	}

	subs, err := svc.repo.FindByStudent(ctx, stud.ID)
	if err != nil {
		return nil, errors.Wrap(err, "finding submissions by student")
	}
	return nonNil(subs), nil
}

// Queue lists submissions in the given status (pending when empty) for reviewers.
func (svc *Service) Queue(ctx context.Context, actorID string, status Status) ([]Submission, error) {
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}

	caps, err := svc.actorCapabilities(ctx, actorID, "review submissions")
	if err != nil {
		return nil, err
	}
	if !caps.CanReview() {
		return nil, core.NewAuthorizationError("review submissions")
	}

	subs, err := svc.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, errors.Wrap(err, "finding submissions by status")
	}
	return nonNil(subs), nil
}

// PendingCount returns the current number of pending submissions.
func (svc *Service) PendingCount(ctx context.Context) (int, error) {
	n, err := svc.repo.Count(ctx, StatusPending)
	if err != nil {
		return 0, errors.Wrap(err, "counting pending submissions")
	}
	return n, nil
}

func nonNil(subs []Submission) []Submission {
	if subs == nil {
		return []Submission{}
	}
	return subs
}
