/*
Package kv is the persistence port shared by every repository.

Records are bson documents grouped by domain.Table and addressed by a string
key. All entry points of the engine run inside RunWithTransaction, which
gives them whole-call atomicity and a total order. Calls nested inside a
running transaction join it; on error only the writes made by the nested
call are reverted.
*/
package kv

import (
	"errors"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

var (
	// ErrNotFound is returned by Get and Delete when the key is absent
	ErrNotFound = errors.New("record not found")
)

// DecodeFunc decodes the current record into out
type DecodeFunc func(out interface{}) error

type Store interface {
	Get(c ctx.Ctx, table domain.Table, key string, out interface{}) error
	Put(c ctx.Ctx, table domain.Table, key string, val interface{}) error
	Delete(c ctx.Ctx, table domain.Table, key string) error

	// Scan visits every record of table whose key starts with prefix, in key order
	Scan(c ctx.Ctx, table domain.Table, prefix string, fn func(key string, decode DecodeFunc) error) error

	RunWithTransaction(c ctx.Ctx, run func(ctx.Ctx) error) error

	// AfterCommit schedules fn to run once the outermost transaction commits.
	// Hooks registered by a reverted call are dropped. Outside a transaction
	// fn runs immediately.
	AfterCommit(c ctx.Ctx, fn func())
}

// Exists is a convenience wrapper over Get
func Exists(c ctx.Ctx, s Store, table domain.Table, key string, probe interface{}) (bool, error) {
	err := s.Get(c, table, key, probe)
	if err == ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
