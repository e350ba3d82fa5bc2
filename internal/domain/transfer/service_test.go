package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flame/cli/internal/apperr"
	"flame/cli/internal/store/memstore"
	"flame/cli/internal/value"
)

func obj(t *testing.T, raw string) *value.Map {
	t.Helper()
	v, err := value.Parse([]byte(raw))
	require.NoError(t, err)
	return v.Object()
}

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	st := memstore.New(memstore.WithClock(func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}))
	st.Put("users/u1", obj(t, `{"name": "Ann", "age": 30}`))
	return st
}

func TestCopy(t *testing.T) {
	st := seeded(t)
	svc := NewService(st, nil)

	out, err := svc.Copy(context.Background(), Request{Source: "users/u1", Destination: "archive/u1"})
	require.NoError(t, err)
	assert.Equal(t, "archive/u1", out.Destination)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), out.WriteTime)

	src, ok := st.Data("users/u1")
	require.True(t, ok, "copy must leave the source in place")
	dst, ok := st.Data("archive/u1")
	require.True(t, ok)
	assert.True(t, src.Equal(dst))

	sets := st.CallsOf(memstore.OpSet)
	require.Len(t, sets, 1)
	assert.False(t, sets[0].Merge)
	assert.Empty(t, st.CallsOf(memstore.OpDelete))
}

func TestCopyInjectsIDField(t *testing.T) {
	st := seeded(t)
	svc := NewService(st, nil)

	_, err := svc.Copy(context.Background(), Request{Source: "users/u1", Destination: "users/u2", IDField: "uid"})
	require.NoError(t, err)

	dst, _ := st.Data("users/u2")
	assert.Equal(t, []string{"name", "age", "uid"}, dst.Keys())
	uid, _ := dst.Get("uid")
	assert.Equal(t, "u2", uid.Str())

	src, _ := st.Data("users/u1")
	_, has := src.Get("uid")
	assert.False(t, has)
}

func TestCopyErrors(t *testing.T) {
	st := seeded(t)
	svc := NewService(st, nil)
	ctx := context.Background()

	_, err := svc.Copy(ctx, Request{Source: "users", Destination: "archive/u1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Copy(ctx, Request{Source: "users/u1", Destination: "archive"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Copy(ctx, Request{Source: "users/ghost", Destination: "archive/ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Empty(t, st.CallsOf(memstore.OpSet))
}

func TestMove(t *testing.T) {
	st := seeded(t)
	svc := NewService(st, nil)

	out, err := svc.Move(context.Background(), Request{Source: "users/u1", Destination: "archive/u1"})
	require.NoError(t, err)
	assert.True(t, out.Transactional)

	_, ok := st.Data("users/u1")
	assert.False(t, ok)
	dst, ok := st.Data("archive/u1")
	require.True(t, ok)
	assert.True(t, obj(t, `{"name": "Ann", "age": 30}`).Equal(dst))
	assert.Len(t, st.CallsOf(memstore.OpTxn), 1)
}

func TestMoveMissingSourceWritesNothing(t *testing.T) {
	st := seeded(t)
	svc := NewService(st, nil)

	_, err := svc.Move(context.Background(), Request{Source: "users/ghost", Destination: "archive/ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, st.CallsOf(memstore.OpSet))
	assert.Empty(t, st.CallsOf(memstore.OpDelete))
	_, ok := st.Data("archive/ghost")
	assert.False(t, ok)
}

func TestMoveRejectsSamePath(t *testing.T) {
	st := seeded(t)
	svc := NewService(st, nil)

	_, err := svc.Move(context.Background(), Request{Source: "users/u1", Destination: "/users/u1/"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, ok := st.Data("users/u1")
	assert.True(t, ok)
}

func TestMoveFailedWriteLeavesSource(t *testing.T) {
	st := seeded(t)
	st.FailOn(memstore.OpSet, "archive/u1", errors.New("unavailable"))
	svc := NewService(st, nil)

	_, err := svc.Move(context.Background(), Request{Source: "users/u1", Destination: "archive/u1"})
	assert.ErrorIs(t, err, apperr.ErrConnection)

	_, ok := st.Data("users/u1")
	assert.True(t, ok)
	_, ok = st.Data("archive/u1")
	assert.False(t, ok)
}

func TestMoveWithoutTransactions(t *testing.T) {
	st := seeded(t)
	svc := NewService(st.Plain(), nil)

	out, err := svc.Move(context.Background(), Request{Source: "users/u1", Destination: "archive/u1", IDField: "id"})
	require.NoError(t, err)
	assert.False(t, out.Transactional)

	_, ok := st.Data("users/u1")
	assert.False(t, ok)
	dst, ok := st.Data("archive/u1")
	require.True(t, ok)
	id, _ := dst.Get("id")
	assert.Equal(t, "u1", id.Str())
	assert.Empty(t, st.CallsOf(memstore.OpTxn))
}

func TestMoveWithoutTransactionsDeleteFails(t *testing.T) {
	st := seeded(t)
	st.FailOn(memstore.OpDelete, "users/u1", errors.New("unavailable"))
	svc := NewService(st.Plain(), nil)

	_, err := svc.Move(context.Background(), Request{Source: "users/u1", Destination: "archive/u1"})
	assert.ErrorIs(t, err, apperr.ErrPartialMove)

	// never lost: the document is present at both paths
	_, ok := st.Data("users/u1")
	assert.True(t, ok)
	_, ok = st.Data("archive/u1")
	assert.True(t, ok)
}
