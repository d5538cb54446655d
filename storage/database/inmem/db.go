// Package inmemdb implements every repository in memory, for local development & tests.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/business"
	"github.com/trezcool/rota/core/notice"
	"github.com/trezcool/rota/core/schedule"
	"github.com/trezcool/rota/core/user"
)

type (
	DB struct {
		mutex   sync.RWMutex
		txMutex sync.Mutex
		tables
	}

	tables struct {
		business     map[string]business.Business
		user         map[string]user.User
		template     map[string]schedule.ShiftTemplate
		assignment   map[string]schedule.Assignment
		announcement map[string]notice.Announcement
		notification map[string]notice.Notification
	}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{tables: tables{
		business:     make(map[string]business.Business),
		user:         make(map[string]user.User),
		template:     make(map[string]schedule.ShiftTemplate),
		assignment:   make(map[string]schedule.Assignment),
		announcement: make(map[string]notice.Announcement),
		notification: make(map[string]notice.Notification),
	}}
}

// txExec marks repository calls made inside InTx & journals how to undo their writes.
// Its DBExecutor is nil: in-memory repositories never run queries.
type txExec struct {
	core.DBExecutor
	undo []func()
}

func transaction(exec []core.DBExecutor) *txExec {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*txExec); ok {
			return tx
		}
	}
	return nil
}

// record journals the current value of m[key] so that a failed transaction restores it.
// Callers hold db.mutex & call it before writing m[key]; writes made outside a transaction are not journaled.
func record[V any](exec []core.DBExecutor, m map[string]V, key string) {
	tx := transaction(exec)
	if tx == nil {
		return
	}
	prev, existed := m[key]
	tx.undo = append(tx.undo, func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
}

// InTx serialises transactions; the writes made by fn are undone when it fails.
// Writes made concurrently outside of the transaction are kept.
func (db *DB) InTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMutex.Lock()
	defer db.txMutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &txExec{}
	if err := fn(tx); err != nil {
		db.mutex.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		db.mutex.Unlock()
		return err
	}
	return nil
}
