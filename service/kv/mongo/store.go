// Package mongo implements kv.Store on top of service/query. Records are kept
// as {_id: key, value: <document>} and transactions are mongo session
// transactions. Nested calls join the running session; every write inside a
// transaction journals the record it replaces so a failed nested call can
// restore its savepoint.
package mongo

import (
	"context"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/kv"
	"github.com/x-xyz/settlement/service/query"
)

type txKey struct{}

type undo struct {
	table   domain.Table
	key     string
	prev    bson.Raw
	existed bool
}

type tx struct {
	mu      sync.Mutex
	hooks   []func()
	journal []undo
}

func (t *tx) marks() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.journal), len(t.hooks)
}

func (t *tx) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = nil
	t.journal = nil
}

type record struct {
	Key   string   `bson:"_id"`
	Value bson.Raw `bson:"value"`
}

type Store struct {
	q query.Mongo
}

func New(q query.Mongo) *Store {
	return &Store{q: q}
}

func txFrom(c ctx.Ctx) *tx {
	if c.Context == nil {
		return nil
	}
	t, _ := c.Value(txKey{}).(*tx)
	return t
}

// journal records the current version of key before a write inside a transaction
func (s *Store) journal(c ctx.Ctx, table domain.Table, key string) error {
	t := txFrom(c)
	if t == nil {
		return nil
	}
	u := undo{table: table, key: key}
	var rec record
	if err := s.q.FindOne(c, table, bson.M{"_id": key}, &rec); err == nil {
		u.prev, u.existed = rec.Value, true
	} else if err != query.ErrNotFound {
		return err
	}
	t.mu.Lock()
	t.journal = append(t.journal, u)
	t.mu.Unlock()
	return nil
}

// revert restores every record written after mark, newest first
func (s *Store) revert(c ctx.Ctx, t *tx, mark int) error {
	t.mu.Lock()
	entries := append([]undo(nil), t.journal[mark:]...)
	t.journal = t.journal[:mark]
	t.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		u := entries[i]
		var err error
		if u.existed {
			err = s.q.Upsert(c, u.table, bson.M{"_id": u.key}, record{Key: u.key, Value: u.prev})
		} else if err = s.q.Remove(c, u.table, bson.M{"_id": u.key}); err == query.ErrNotFound {
			err = nil
		}
		if err != nil {
			c.WithFields(log.Fields{"err": err, "table": u.table, "key": u.key}).Error("savepoint revert failed")
			return err
		}
	}
	return nil
}

func (s *Store) Get(c ctx.Ctx, table domain.Table, key string, out interface{}) error {
	var rec record
	if err := s.q.FindOne(c, table, bson.M{"_id": key}, &rec); err == query.ErrNotFound {
		return kv.ErrNotFound
	} else if err != nil {
		return err
	}
	return bson.Unmarshal(rec.Value, out)
}

func (s *Store) Put(c ctx.Ctx, table domain.Table, key string, val interface{}) error {
	raw, err := bson.Marshal(val)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "table": table, "key": key}).Error("bson.Marshal failed")
		return err
	}
	if err := s.journal(c, table, key); err != nil {
		return err
	}
	return s.q.Upsert(c, table, bson.M{"_id": key}, record{Key: key, Value: raw})
}

func (s *Store) Delete(c ctx.Ctx, table domain.Table, key string) error {
	if err := s.journal(c, table, key); err != nil {
		return err
	}
	if err := s.q.Remove(c, table, bson.M{"_id": key}); err == query.ErrNotFound {
		return kv.ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (s *Store) Scan(c ctx.Ctx, table domain.Table, prefix string, fn func(key string, decode kv.DecodeFunc) error) error {
	qry := bson.M{}
	if prefix != "" {
		qry["_id"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}
	recs := []record{}
	if err := s.q.Search(c, table, 0, 0, "_id", qry, &recs); err != nil {
		return err
	}
	for _, rec := range recs {
		raw := rec.Value
		if err := fn(rec.Key, func(out interface{}) error { return bson.Unmarshal(raw, out) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RunWithTransaction(c ctx.Ctx, run func(ctx.Ctx) error) error {
	if t := txFrom(c); t != nil {
		mark, hookMark := t.marks()
		if err := run(c); err != nil {
			if rerr := s.revert(c, t, mark); rerr != nil {
				return rerr
			}
			t.mu.Lock()
			t.hooks = t.hooks[:hookMark]
			t.mu.Unlock()
			return err
		}
		return nil
	}

	t := &tx{}
	tc := ctx.WithContext(c, context.WithValue(c.Context, txKey{}, t))
	err := s.q.RunWithTransaction(tc, func(sc ctx.Ctx) error {
		// the driver retries transient failures, start every attempt clean
		t.reset()
		return run(sc)
	})
	if err != nil {
		return err
	}
	for _, fn := range t.hooks {
		fn()
	}
	return nil
}

func (s *Store) AfterCommit(c ctx.Ctx, fn func()) {
	t := txFrom(c)
	if t == nil {
		fn()
		return
	}
	t.mu.Lock()
	t.hooks = append(t.hooks, fn)
	t.mu.Unlock()
}
