package inmemdb

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil)

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) Insert(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	stored := sub
	stored.Fees = cloneJSON(sub.Fees)
	repo.db.table = append(repo.db.table, &stored)
	return sub, nil
}

// filter returns matching submissions, newest first.
func (repo *submissionRepository) filter(match func(*submission.Submission) bool) []submission.Submission {
	subs := make([]submission.Submission, 0)
	for i := len(repo.db.table) - 1; i >= 0; i-- {
		if sub := repo.db.table[i]; match(sub) {
			found := *sub
			found.Fees = cloneJSON(sub.Fees)
			subs = append(subs, found)
		}
	}
	return subs
}

func cloneJSON(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func (repo *submissionRepository) FindByStudent(_ context.Context, studentID string) ([]submission.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.filter(func(sub *submission.Submission) bool { return sub.StudentID == studentID }), nil
}

func (repo *submissionRepository) FindByStatus(_ context.Context, status submission.Status) ([]submission.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.filter(func(sub *submission.Submission) bool { return sub.Status == status }), nil
}

func (repo *submissionRepository) UpdateStatusForStudent(_ context.Context, studentID string, from, to submission.Status) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.failUpdates != nil {
		return 0, repo.db.failUpdates
	}

	var n int
	now := core.NowFunc()
	for _, sub := range repo.db.table {
		if sub.StudentID == studentID && sub.Status == from {
			sub.Status = to
			sub.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (repo *submissionRepository) Count(_ context.Context, status submission.Status) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, sub := range repo.db.table {
		if sub.Status == status {
			n++
		}
	}
	return n, nil
}
