package sqlxrepos_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/submission"
	"github.com/trezcool/bursar/core/user"
	. "github.com/trezcool/bursar/storage/database/sqlx"
	"github.com/trezcool/bursar/testutil"
)

func Test_userRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	student := testutil.CreateUser(t, repo, "Jane", "jane@test.cd", user.RoleStudent)
	bursar := testutil.CreateUser(t, repo, "Bursar", "bursar@test.cd", user.RoleEmployeeBursar, user.RoleStudent)
	owner := testutil.CreateUser(t, repo, "Owner", "owner@test.cd", user.RoleAdminOwner)

	t.Run("CheckEmailUniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrUserExists, repo.CheckEmailUniqueness(ctx, student.Email))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "new@test.cd"))
	})

	t.Run("GetUser", func(t *testing.T) {
		usr, err := repo.GetUser(ctx, user.GetFilter{ID: student.ID})
		require.NoError(t, err)
		assert.Equal(t, student.Email, usr.Email)
		assert.Equal(t, []string{user.RoleStudent}, usr.Roles)
		assert.Equal(t, student.CreatedAt.Truncate(time.Millisecond), usr.CreatedAt)

		usr, err = repo.GetUser(ctx, user.GetFilter{Email: owner.Email})
		require.NoError(t, err)
		assert.Equal(t, owner.ID, usr.ID)

		for _, filter := range []user.GetFilter{{ID: "not-a-uuid"}, {ID: "0b5ad1f7-6a5e-4a5e-9d0e-5f3c3a3e2b11"}, {Email: "nobody@test.cd"}, {}} {
			_, err = repo.GetUser(ctx, filter)
			assert.Equal(t, user.ErrNotFound, err, "filter %+v", filter)
		}
	})

	t.Run("QueryUsers", func(t *testing.T) {
		ids := func(users []user.User) []string {
			out := make([]string, 0, len(users))
			for _, u := range users {
				out = append(out, u.ID)
			}
			return out
		}

		users, err := repo.QueryUsers(ctx, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{student.ID, bursar.ID, owner.ID}, ids(users))

		users, err = repo.QueryUsers(ctx, &user.QueryFilter{Roles: []string{user.RoleStudent}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{student.ID, bursar.ID}, ids(users))

		users, err = repo.QueryUsers(ctx, &user.QueryFilter{Roles: []string{user.RoleAdmin, user.RoleEmployee}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{bursar.ID, owner.ID}, ids(users))
	})

	t.Run("UpdateUserMeta", func(t *testing.T) {
		meta := json.RawMessage(`{"paid":["f1"]}`)
		usr, err := repo.UpdateUserMeta(ctx, student.ID, meta)
		require.NoError(t, err)
		assert.JSONEq(t, string(meta), string(usr.Meta))

		usr, err = repo.UpdateUserMeta(ctx, student.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, usr.Meta)

		_, err = repo.UpdateUserMeta(ctx, "0b5ad1f7-6a5e-4a5e-9d0e-5f3c3a3e2b11", meta)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func Test_feeRepository_QueryBillableFees(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewFeeRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	tuition := testutil.CreateFee(t, db, "Tuition", 150000, base)
	testutil.CreateFee(t, db, "", 100, base.Add(time.Minute)) // NULL name
	library := testutil.CreateFee(t, db, "Library", 2500, base.Add(2*time.Minute))
	lab := testutil.CreateFee(t, db, "Lab", 4000, base.Add(3*time.Minute))

	tests := []struct {
		name    string
		page    core.PageRequest
		wantIDs []string
	}{
		{name: "all", page: core.PageRequest{Page: 1, PerPage: 15}, wantIDs: []string{tuition.ID, library.ID, lab.ID}},
		{name: "first page", page: core.PageRequest{Page: 1, PerPage: 2}, wantIDs: []string{tuition.ID, library.ID}},
		{name: "second page", page: core.PageRequest{Page: 2, PerPage: 2}, wantIDs: []string{lab.ID}},
		{name: "past the end", page: core.PageRequest{Page: 3, PerPage: 2}, wantIDs: []string{}},
		{name: "last representable page", page: core.PageRequest{Page: math.MaxInt / 2, PerPage: 2}, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, total, err := repo.QueryBillableFees(ctx, tt.page)
			require.NoError(t, err)
			assert.Equal(t, 3, total)

			ids := make([]string, 0, len(fees))
			for _, f := range fees {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	fees, _, err := repo.QueryBillableFees(ctx, core.PageRequest{Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, tuition, fees[0])
}

func Test_feeRepository_empty(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewFeeRepository(db)

	testutil.CreateFee(t, db, "", 100, time.Now())

	fees, total, err := repo.QueryBillableFees(context.Background(), core.PageRequest{Page: 1, PerPage: 15})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, fees)
}

func Test_submissionRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	student := testutil.CreateUser(t, usrRepo, "Jane", "jane@test.cd", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Joe", "joe@test.cd", user.RoleStudent)

	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	insert := func(studentID string, offset time.Duration, fees json.RawMessage) submission.Submission {
		sub, err := repo.Insert(ctx, submission.Submission{
			StudentID:   studentID,
			StudentName: "name",
			Fees:        fees,
			File:        "receipt.pdf",
			Status:      submission.StatusPending,
			CreatedAt:   base.Add(offset),
			UpdatedAt:   base.Add(offset),
		})
		require.NoError(t, err)
		return sub
	}
	first := insert(student.ID, 0, json.RawMessage(`[{"id":"f1"}]`))
	second := insert(student.ID, time.Minute, nil)
	third := insert(other.ID, 2*time.Minute, nil)

	t.Run("Insert", func(t *testing.T) {
		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)

		_, err := repo.Insert(ctx, submission.Submission{StudentID: "0b5ad1f7-6a5e-4a5e-9d0e-5f3c3a3e2b11", File: "x", Status: submission.StatusPending})
		assert.Error(t, err, "student must exist")
	})

	t.Run("FindByStudent", func(t *testing.T) {
		subs, err := repo.FindByStudent(ctx, student.ID)
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, second.ID, subs[0].ID)
		assert.Equal(t, first, subs[1])
	})

	t.Run("Count & FindByStatus", func(t *testing.T) {
		n, err := repo.Count(ctx, submission.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		subs, err := repo.FindByStatus(ctx, submission.StatusPending)
		require.NoError(t, err)
		require.Len(t, subs, 3)
		assert.Equal(t, third.ID, subs[0].ID)
	})

	t.Run("UpdateStatusForStudent", func(t *testing.T) {
		n, err := repo.UpdateStatusForStudent(ctx, student.ID, submission.StatusPending, submission.StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = repo.UpdateStatusForStudent(ctx, student.ID, submission.StatusPending, submission.StatusAccepted)
		require.NoError(t, err)
		assert.Zero(t, n)

		pending, err := repo.Count(ctx, submission.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)

		subs, err := repo.FindByStatus(ctx, submission.StatusAccepted)
		require.NoError(t, err)
		require.Len(t, subs, 2)
		for _, sub := range subs {
			assert.Equal(t, student.ID, sub.StudentID)
		}
	})
}
