package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/kv"
)

const testTable = domain.Table("test")

type doc struct {
	Value string `bson:"value"`
}

type storeSuite struct {
	suite.Suite

	ctx   ctx.Ctx
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeSuite))
}

func (s *storeSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.store = New()
}

func (s *storeSuite) get(key string) (string, error) {
	var d doc
	err := s.store.Get(s.ctx, testTable, key, &d)
	return d.Value, err
}

func (s *storeSuite) TestPutGetDelete() {
	req := s.Require()

	_, err := s.get("a")
	req.Equal(kv.ErrNotFound, err)

	req.NoError(s.store.Put(s.ctx, testTable, "a", doc{"1"}))
	v, err := s.get("a")
	req.NoError(err)
	req.Equal("1", v)

	req.NoError(s.store.Delete(s.ctx, testTable, "a"))
	req.Equal(kv.ErrNotFound, s.store.Delete(s.ctx, testTable, "a"))
}

func (s *storeSuite) TestRollbackOnError() {
	req := s.Require()
	req.NoError(s.store.Put(s.ctx, testTable, "a", doc{"1"}))

	boom := errors.New("boom")
	err := s.store.RunWithTransaction(s.ctx, func(c ctx.Ctx) error {
		req.NoError(s.store.Put(c, testTable, "a", doc{"2"}))
		req.NoError(s.store.Put(c, testTable, "b", doc{"3"}))
		req.NoError(s.store.Delete(c, testTable, "a"))
		return boom
	})
	req.Equal(boom, err)

	v, err := s.get("a")
	req.NoError(err)
	req.Equal("1", v)
	_, err = s.get("b")
	req.Equal(kv.ErrNotFound, err)
}

func (s *storeSuite) TestNestedRevertsOnlyItsOwnWrites() {
	req := s.Require()
	hooks := []string{}

	err := s.store.RunWithTransaction(s.ctx, func(c ctx.Ctx) error {
		req.NoError(s.store.Put(c, testTable, "outer", doc{"1"}))
		s.store.AfterCommit(c, func() { hooks = append(hooks, "outer") })

		nestedErr := s.store.RunWithTransaction(c, func(c ctx.Ctx) error {
			req.NoError(s.store.Put(c, testTable, "inner", doc{"2"}))
			s.store.AfterCommit(c, func() { hooks = append(hooks, "inner") })
			return errors.New("skip")
		})
		req.Error(nestedErr)
		req.Empty(hooks)
		return nil
	})
	req.NoError(err)

	v, err := s.get("outer")
	req.NoError(err)
	req.Equal("1", v)
	_, err = s.get("inner")
	req.Equal(kv.ErrNotFound, err)
	req.Equal([]string{"outer"}, hooks)
}

func (s *storeSuite) TestPanicRevertsAndUnlocks() {
	req := s.Require()
	req.Panics(func() {
		_ = s.store.RunWithTransaction(s.ctx, func(c ctx.Ctx) error {
			req.NoError(s.store.Put(c, testTable, "a", doc{"1"}))
			panic("boom")
		})
	})
	_, err := s.get("a")
	req.Equal(kv.ErrNotFound, err)

	// the lock must have been released
	req.NoError(s.store.Put(s.ctx, testTable, "a", doc{"2"}))
}

func (s *storeSuite) TestScanInKeyOrder() {
	req := s.Require()
	for _, k := range []string{"p:c", "p:a", "q:z", "p:b"} {
		req.NoError(s.store.Put(s.ctx, testTable, k, doc{k}))
	}

	got := []string{}
	err := s.store.Scan(s.ctx, testTable, "p:", func(key string, decode kv.DecodeFunc) error {
		var d doc
		if err := decode(&d); err != nil {
			return err
		}
		got = append(got, d.Value)
		return nil
	})
	req.NoError(err)
	req.Equal([]string{"p:a", "p:b", "p:c"}, got)
}

func (s *storeSuite) TestAfterCommitOutsideTransactionRunsImmediately() {
	ran := false
	s.store.AfterCommit(s.ctx, func() { ran = true })
	s.True(ran)
}
