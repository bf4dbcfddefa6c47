// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/fee"
	"github.com/trezcool/bursar/core/user"
	"github.com/trezcool/bursar/storage/database"
)

// Config returns a test config that does not depend on the environment.
func Config() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Debug:            false,
		TestMode:         true,
		AppName:          "Bursar",
		Build:            "test",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Bursar", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
			DisableRequestLogs: true,
		},
		Database: core.DatabaseConfig{Engine: database.SQLite, Path: ":memory:"},
		Billing:  core.BillingConfig{DefaultPerPage: 15, MaxPerPage: 100},
	}
}

// Logger is a core.Logger that records messages and discards output.
type Logger struct {
	std    *log.Logger
	Errors []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{std: log.New(io.Discard, "", 0)}
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.std.Println(msg) }
func (l *Logger) Info(msg string, args ...interface{})  { l.std.Println(msg) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.std.Println(msg) }
func (l *Logger) Error(msg string, args ...interface{}) { l.Errors = append(l.Errors, msg) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.std.Fatal(msg) }

// OpenDB opens a migrated in-memory sqlite database, closed at the end of the test.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, name, email string, roles ...string) user.User {
	t.Helper()

	now := core.NowFunc()
	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:      name,
		Email:     email,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateFee inserts a catalog fee. An empty name is stored as NULL.
func CreateFee(t *testing.T, db *sqlx.DB, name string, amount int64, createdAt time.Time) fee.Fee {
	t.Helper()

	f := fee.Fee{
		ID:        uuid.New().String(),
		Name:      name,
		Amount:    amount,
		Currency:  "USD",
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
	var dbName interface{}
	if name != "" {
		dbName = name
	}

	q, args, err := sq.StatementBuilder.PlaceholderFormat(database.Placeholder(db)).
		Insert("fees").
		Columns("id", "name", "amount", "currency", "created_at").
		Values(f.ID, dbName, f.Amount, f.Currency, f.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		t.Fatalf("CreateFee() failed: %v", err)
	}
	if _, err = db.Exec(q, args...); err != nil {
		t.Fatalf("CreateFee() failed: %v", err)
	}
	return f
}
