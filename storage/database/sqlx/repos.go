// Package sqlxrepos implements the core repositories on top of sqlx and squirrel.
// The same queries run on postgres and sqlite.
package sqlxrepos

import (
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bursar/storage/database"
)

// Tables
const (
	usersTable       = "users"
	feesTable        = "fees"
	submissionsTable = "submissions"
)

func builder(db *sqlx.DB) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(database.Placeholder(db))
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// jsonText stores raw JSON as nullable TEXT.
func jsonText(raw json.RawMessage) null.String {
	return null.NewString(string(raw), len(raw) > 0)
}

func rawJSON(s null.String) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}
