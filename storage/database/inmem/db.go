// Package inmemdb implements the core repositories in memory, for tests and local runs.
package inmemdb

import (
	"sync"

	"github.com/trezcool/bursar/core/fee"
	"github.com/trezcool/bursar/core/submission"
	"github.com/trezcool/bursar/core/user"
)

type (
	DB struct {
		user       *userTable
		fee        *feeTable
		submission *submissionTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	feeTable struct {
		table []fee.Fee
		mutex sync.RWMutex
	}

	submissionTable struct {
		table []*submission.Submission
		mutex sync.RWMutex

		// failUpdates makes UpdateStatusForStudent fail with it when set.
		failUpdates error
	}
)

func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		fee:        &feeTable{},
		submission: &submissionTable{},
	}
}

// SeedFees adds fees to the catalog, in order.
func (db *DB) SeedFees(fees ...fee.Fee) {
	db.fee.mutex.Lock()
	defer db.fee.mutex.Unlock()
	db.fee.table = append(db.fee.table, fees...)
}

// FailStatusUpdates makes every following bulk status update fail with err; nil restores them.
func (db *DB) FailStatusUpdates(err error) {
	db.submission.mutex.Lock()
	defer db.submission.mutex.Unlock()
	db.submission.failUpdates = err
}
