package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/submission"
)

var submissionColumns = []string{"id", "student_id", "student_name", "fees", "file", "status", "created_at", "updated_at"}

type submissionRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	StudentName string      `db:"student_name"`
	Fees        null.String `db:"fees"`
	File        string      `db:"file"`
	Status      string      `db:"status"`
	CreatedAt   int64       `db:"created_at"`
	UpdatedAt   int64       `db:"updated_at"`
}

func (row submissionRow) submission() submission.Submission {
	return submission.Submission{
		ID:          row.ID,
		StudentID:   row.StudentID,
		StudentName: row.StudentName,
		Fees:        rawJSON(row.Fees),
		File:        row.File,
		Status:      submission.Status(row.Status),
		CreatedAt:   fromMillis(row.CreatedAt),
		UpdatedAt:   fromMillis(row.UpdatedAt),
	}
}

type submissionRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db, sb: builder(db)}
}

func (repo submissionRepository) Insert(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	sub.ID = uuid.New().String()
	row := submissionRow{
		ID:          sub.ID,
		StudentID:   sub.StudentID,
		StudentName: sub.StudentName,
		Fees:        jsonText(sub.Fees),
		File:        sub.File,
		Status:      string(sub.Status),
		CreatedAt:   toMillis(sub.CreatedAt),
		UpdatedAt:   toMillis(sub.UpdatedAt),
	}

	q, args, err := repo.sb.Insert(submissionsTable).
		Columns(submissionColumns...).
		Values(row.ID, row.StudentID, row.StudentName, row.Fees, row.File, row.Status, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return row.submission(), nil
}

func (repo submissionRepository) find(ctx context.Context, where sq.Eq) ([]submission.Submission, error) {
	q, args, err := repo.sb.Select(submissionColumns...).
		From(submissionsTable).
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []submissionRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	subs := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.submission())
	}
	return subs, nil
}

func (repo submissionRepository) FindByStudent(ctx context.Context, studentID string) ([]submission.Submission, error) {
	return repo.find(ctx, sq.Eq{"student_id": studentID})
}

func (repo submissionRepository) FindByStatus(ctx context.Context, status submission.Status) ([]submission.Submission, error) {
	return repo.find(ctx, sq.Eq{"status": string(status)})
}

func (repo submissionRepository) UpdateStatusForStudent(ctx context.Context, studentID string, from, to submission.Status) (int, error) {
	q, args, err := repo.sb.Update(submissionsTable).
		Set("status", string(to)).
		Set("updated_at", toMillis(core.NowFunc())).
		Where(sq.Eq{"student_id": studentID, "status": string(from)}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "updating submissions status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "updating submissions status")
	}
	return int(n), nil
}

func (repo submissionRepository) Count(ctx context.Context, status submission.Status) (int, error) {
	q, args, err := repo.sb.Select("COUNT(*)").From(submissionsTable).Where(sq.Eq{"status": string(status)}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return n, nil
}
