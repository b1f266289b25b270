// Package memory implements kv.Store in process. A single mutex serializes
// transactions and an undo journal reverts failed ones, nested calls revert
// to their own savepoint.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/kv"
)

type txKey struct{}

type undo struct {
	table   domain.Table
	key     string
	prev    []byte
	existed bool
}

type tx struct {
	store   *Store
	journal []undo
	hooks   []func()
}

type Store struct {
	mu     sync.Mutex
	tables map[domain.Table]map[string][]byte
}

func New() *Store {
	return &Store{
		tables: make(map[domain.Table]map[string][]byte),
	}
}

func (s *Store) txFrom(c ctx.Ctx) *tx {
	if c.Context == nil {
		return nil
	}
	t, ok := c.Value(txKey{}).(*tx)
	if !ok || t.store != s {
		return nil
	}
	return t
}

// locked runs fn holding the store lock unless the caller already owns it
// through a running transaction.
func (s *Store) locked(c ctx.Ctx, fn func(t *tx) error) error {
	if t := s.txFrom(c); t != nil {
		return fn(t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

func (s *Store) table(table domain.Table) map[string][]byte {
	m, ok := s.tables[table]
	if !ok {
		m = make(map[string][]byte)
		s.tables[table] = m
	}
	return m
}

func (s *Store) journal(t *tx, table domain.Table, key string) {
	if t == nil {
		return
	}
	prev, existed := s.tables[table][key]
	t.journal = append(t.journal, undo{table: table, key: key, prev: prev, existed: existed})
}

func (s *Store) revert(t *tx, mark int) {
	for i := len(t.journal) - 1; i >= mark; i-- {
		u := t.journal[i]
		if u.existed {
			s.table(u.table)[u.key] = u.prev
		} else {
			delete(s.tables[u.table], u.key)
		}
	}
	t.journal = t.journal[:mark]
}

func (s *Store) Get(c ctx.Ctx, table domain.Table, key string, out interface{}) error {
	var raw []byte
	err := s.locked(c, func(_ *tx) error {
		r, ok := s.tables[table][key]
		if !ok {
			return kv.ErrNotFound
		}
		raw = r
		return nil
	})
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (s *Store) Put(c ctx.Ctx, table domain.Table, key string, val interface{}) error {
	raw, err := bson.Marshal(val)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "table": table, "key": key}).Error("bson.Marshal failed")
		return err
	}
	return s.locked(c, func(t *tx) error {
		s.journal(t, table, key)
		s.table(table)[key] = raw
		return nil
	})
}

func (s *Store) Delete(c ctx.Ctx, table domain.Table, key string) error {
	return s.locked(c, func(t *tx) error {
		if _, ok := s.tables[table][key]; !ok {
			return kv.ErrNotFound
		}
		s.journal(t, table, key)
		delete(s.tables[table], key)
		return nil
	})
}

func (s *Store) Scan(c ctx.Ctx, table domain.Table, prefix string, fn func(key string, decode kv.DecodeFunc) error) error {
	type entry struct {
		key string
		raw []byte
	}
	var entries []entry
	_ = s.locked(c, func(_ *tx) error {
		for k, v := range s.tables[table] {
			if strings.HasPrefix(k, prefix) {
				entries = append(entries, entry{k, v})
			}
		}
		return nil
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	for _, e := range entries {
		raw := e.raw
		if err := fn(e.key, func(out interface{}) error { return bson.Unmarshal(raw, out) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RunWithTransaction(c ctx.Ctx, run func(ctx.Ctx) error) error {
	if t := s.txFrom(c); t != nil {
		mark, hookMark := len(t.journal), len(t.hooks)
		if err := run(c); err != nil {
			s.revert(t, mark)
			t.hooks = t.hooks[:hookMark]
			return err
		}
		return nil
	}

	s.mu.Lock()
	t := &tx{store: s}
	tc := ctx.WithContext(c, context.WithValue(c.Context, txKey{}, t))

	var err error
	func() {
		committed := false
		defer func() {
			if !committed {
				s.revert(t, 0)
			}
			s.mu.Unlock()
		}()
		if err = run(tc); err == nil {
			committed = true
		}
	}()
	if err != nil {
		return err
	}

	for _, hook := range t.hooks {
		hook()
	}
	return nil
}

func (s *Store) AfterCommit(c ctx.Ctx, fn func()) {
	t := s.txFrom(c)
	if t == nil {
		fn()
		return
	}
	t.hooks = append(t.hooks, fn)
}
