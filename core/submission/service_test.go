package submission_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bursar/core"
	. "github.com/trezcool/bursar/core/submission"
	"github.com/trezcool/bursar/core/user"
	emailsvc "github.com/trezcool/bursar/services/email"
	inmemdb "github.com/trezcool/bursar/storage/database/inmem"
	"github.com/trezcool/bursar/testutil"
)

type fixture struct {
	svc     *Service
	db      *inmemdb.DB
	usrRepo user.Repository
	subRepo Repository
	mailSvc *emailsvc.ConsoleServiceMock
	logger  *testutil.Logger

	student  user.User
	other    user.User
	employee user.User
	admin    user.User
	visitor  user.User
}

func setup(t *testing.T) *fixture {
	conf := testutil.Config()
	logger := testutil.NewLogger()
	validate := core.NewValidator()
	user.InitValidators(validate)

	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	return &fixture{
		svc:      NewService(subRepo, user.NewService(usrRepo, validate), validate, mailSvc, logger),
		db:       db,
		usrRepo:  usrRepo,
		subRepo:  subRepo,
		mailSvc:  mailSvc,
		logger:   logger,
		student:  testutil.CreateUser(t, usrRepo, "Student", "student@test.cd", user.RoleStudent),
		other:    testutil.CreateUser(t, usrRepo, "Other", "other@test.cd", user.RoleStudent),
		employee: testutil.CreateUser(t, usrRepo, "Bursar", "bursar@test.cd", user.RoleEmployeeBursar),
		admin:    testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", user.RoleAdmin),
		visitor:  testutil.CreateUser(t, usrRepo, "Visitor", "visitor@test.cd"),
	}
}

func (f *fixture) submit(t *testing.T, studentID string) Submission {
	t.Helper()
	sub, err := f.svc.Create(context.Background(), studentID, NewSubmission{StudentID: studentID, File: "receipt.pdf"})
	require.NoError(t, err)
	return sub
}

func (f *fixture) pending(t *testing.T) int {
	t.Helper()
	n, err := f.svc.PendingCount(context.Background())
	require.NoError(t, err)
	return n
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	fees := json.RawMessage(`[{"id":"f1","amount":150000}]`)

	tests := []struct {
		name      string
		actorID   string
		data      NewSubmission
		wantErr   func(error) bool
		wantName  string
		wantCount int
	}{
		{
			name: "file required", actorID: f.student.ID, data: NewSubmission{StudentID: f.student.ID, File: " \t"},
			wantErr: core.IsValidation,
		},
		{
			name: "student required", actorID: f.employee.ID, data: NewSubmission{File: "receipt.pdf"},
			wantErr: core.IsValidation,
		},
		{
			name: "invalid fees", actorID: f.student.ID, data: NewSubmission{StudentID: f.student.ID, File: "receipt.pdf", Fees: json.RawMessage(`[`)},
			wantErr: core.IsValidation,
		},
		{
			name: "unknown actor", actorID: "nobody", data: NewSubmission{StudentID: f.student.ID, File: "receipt.pdf"},
			wantErr: core.IsAuthorization,
		},
		{
			name: "student for another student", actorID: f.student.ID, data: NewSubmission{StudentID: f.other.ID, File: "receipt.pdf"},
			wantErr: core.IsAuthorization,
		},
		{
			name: "user without role", actorID: f.visitor.ID, data: NewSubmission{StudentID: f.visitor.ID, File: "receipt.pdf"},
			wantErr: core.IsAuthorization,
		},
		{
			name: "unknown student", actorID: f.admin.ID, data: NewSubmission{StudentID: "nobody", File: "receipt.pdf"},
			wantErr: core.IsNotFound,
		},
		{
			name: "not a student", actorID: f.admin.ID, data: NewSubmission{StudentID: f.employee.ID, File: "receipt.pdf"},
			wantErr: core.IsNotFound,
		},
		{
			name: "student for self", actorID: f.student.ID,
			data:     NewSubmission{StudentID: f.student.ID, StudentName: "  Student A. ", Fees: fees, File: " receipt.pdf "},
			wantName: "Student A.", wantCount: 1,
		},
		{
			name: "employee for student", actorID: f.employee.ID, data: NewSubmission{StudentID: f.other.ID, File: "receipt.pdf"},
			wantName: "Other", wantCount: 2,
		},
		{
			name: "admin for student", actorID: f.admin.ID, data: NewSubmission{StudentID: f.other.ID, File: "receipt.pdf"},
			wantName: "Other", wantCount: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.pending(t)
			sub, err := f.svc.Create(context.Background(), tt.actorID, tt.data)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				assert.Equal(t, before, f.pending(t), "nothing must be stored")
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, sub.ID)
			assert.Equal(t, StatusPending, sub.Status)
			assert.Equal(t, "receipt.pdf", sub.File)
			assert.Equal(t, tt.wantName, sub.StudentName)
			assert.Equal(t, tt.data.Fees, sub.Fees)
			assert.False(t, sub.CreatedAt.IsZero())
			assert.Equal(t, tt.wantCount, f.pending(t))
		})
	}
}

func TestService_Approve(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	meta := json.RawMessage(`{"paid":["f1"],"receipt":"R-1"}`)

	f.submit(t, f.student.ID)
	f.submit(t, f.student.ID)
	f.submit(t, f.other.ID)
	require.Equal(t, 3, f.pending(t))

	t.Run("reviewer required", func(t *testing.T) {
		for _, actorID := range []string{f.student.ID, f.visitor.ID, "nobody"} {
			_, err := f.svc.Approve(ctx, actorID, PaymentApproval{StudentID: f.student.ID, Meta: meta})
			assert.True(t, core.IsAuthorization(err), "unexpected error: %v", err)
		}

		usr, err := f.usrRepo.GetUser(ctx, user.GetFilter{ID: f.student.ID})
		require.NoError(t, err)
		assert.Nil(t, usr.Meta)
		assert.Equal(t, 3, f.pending(t))
	})

	t.Run("student required", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, f.employee.ID, PaymentApproval{StudentID: "  "})
		assert.True(t, core.IsValidation(err), "unexpected error: %v", err)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, f.employee.ID, PaymentApproval{StudentID: f.admin.ID})
		assert.True(t, core.IsNotFound(err), "unexpected error: %v", err)
	})

	t.Run("accepts all pending submissions of the student", func(t *testing.T) {
		accepted, err := f.svc.Approve(ctx, f.employee.ID, PaymentApproval{StudentID: f.student.ID, Meta: meta})
		require.NoError(t, err)
		assert.Equal(t, 2, accepted)
		assert.Equal(t, 1, f.pending(t))

		usr, err := f.usrRepo.GetUser(ctx, user.GetFilter{ID: f.student.ID})
		require.NoError(t, err)
		assert.JSONEq(t, string(meta), string(usr.Meta))

		subs, err := f.subRepo.FindByStudent(ctx, f.student.ID)
		require.NoError(t, err)
		for _, sub := range subs {
			assert.Equal(t, StatusAccepted, sub.Status)
		}

		sent := f.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, f.student.Address(), sent[0].To[0])
		assert.Contains(t, sent[0].TextContent, "Hello Student")
		assert.Contains(t, sent[0].HTMLContent, "Student")
	})

	t.Run("already accepted", func(t *testing.T) {
		accepted, err := f.svc.Approve(ctx, f.admin.ID, PaymentApproval{StudentID: f.student.ID, Meta: meta})
		require.NoError(t, err)
		assert.Zero(t, accepted)
		assert.Equal(t, 1, f.pending(t))
		assert.Len(t, f.mailSvc.SentMessages(), 1)
	})

	t.Run("accepting fails after the meta was stored", func(t *testing.T) {
		f.submit(t, f.other.ID)
		f.db.FailStatusUpdates(errors.New("connection reset"))
		defer f.db.FailStatusUpdates(nil)

		otherMeta := json.RawMessage(`{"paid":["f2"]}`)
		_, err := f.svc.Approve(ctx, f.employee.ID, PaymentApproval{StudentID: f.other.ID, Meta: otherMeta})
		require.Error(t, err)
		assert.Equal(t, "connection reset", errors.Cause(err).Error())
		assert.Contains(t, f.logger.Errors, "payment meta stored but submissions not accepted")

		usr, err := f.usrRepo.GetUser(ctx, user.GetFilter{ID: f.other.ID})
		require.NoError(t, err)
		assert.JSONEq(t, string(otherMeta), string(usr.Meta))
		assert.Equal(t, 2, f.pending(t))
	})
}

func TestService_History(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first := f.submit(t, f.student.ID)
	second := f.submit(t, f.student.ID)
	f.submit(t, f.other.ID)

	tests := []struct {
		name    string
		actorID string
		wantErr func(error) bool
	}{
		{name: "own history", actorID: f.student.ID},
		{name: "employee", actorID: f.employee.ID},
		{name: "admin", actorID: f.admin.ID},
		{name: "another student", actorID: f.other.ID, wantErr: core.IsAuthorization},
		{name: "unknown actor", actorID: "nobody", wantErr: core.IsAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, err := f.svc.History(ctx, tt.actorID, f.student.ID)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			require.Len(t, subs, 2)
			assert.Equal(t, second.ID, subs[0].ID)
			assert.Equal(t, first.ID, subs[1].ID)
		})
	}

	t.Run("empty history", func(t *testing.T) {
		subs, err := f.svc.History(ctx, f.admin.ID, testutil.CreateUser(t, f.usrRepo, "New", "new@test.cd", user.RoleStudent).ID)
		require.NoError(t, err)
		assert.NotNil(t, subs)
		assert.Empty(t, subs)
	})
}

func TestService_Queue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.submit(t, f.student.ID)
	pending := f.submit(t, f.other.ID)
	_, err := f.svc.Approve(ctx, f.employee.ID, PaymentApproval{StudentID: f.student.ID})
	require.NoError(t, err)

	tests := []struct {
		name         string
		actorID      string
		status       Status
		wantErr      func(error) bool
		wantStudents []string
	}{
		{name: "pending by default", actorID: f.employee.ID, wantStudents: []string{f.other.ID}},
		{name: "accepted", actorID: f.admin.ID, status: StatusAccepted, wantStudents: []string{f.student.ID}},
		{name: "unknown status", actorID: f.admin.ID, status: "rejected", wantErr: core.IsValidation},
		{name: "student", actorID: f.student.ID, wantErr: core.IsAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, err := f.svc.Queue(ctx, tt.actorID, tt.status)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(subs))
			for _, sub := range subs {
				ids = append(ids, sub.StudentID)
			}
			assert.Equal(t, tt.wantStudents, ids)
		})
	}

	subs, err := f.svc.Queue(ctx, f.employee.ID, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, subs[0].ID)
}

// A student submits, a bursar approves and the notification count follows.
func TestWorkflow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Zero(t, f.pending(t))

	sub := f.submit(t, f.student.ID)
	assert.Equal(t, StatusPending, sub.Status)
	assert.Equal(t, 1, f.pending(t))

	accepted, err := f.svc.Approve(ctx, f.employee.ID, PaymentApproval{StudentID: f.student.ID, Meta: json.RawMessage(`{"status":"paid"}`)})
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)
	assert.Zero(t, f.pending(t))

	subs, err := f.svc.History(ctx, f.student.ID, f.student.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, StatusAccepted, subs[0].Status)
}
