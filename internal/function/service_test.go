package function_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/store"
)

func newService(t *testing.T) (*function.Service, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	svc, err := function.NewService(context.Background(), s, function.DefaultDedupOptions(), nil)
	require.NoError(t, err)
	return svc, s
}

func TestService_CreateStoresCanonicalForm(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	f, err := svc.Create(ctx, "y + c1")
	require.NoError(t, err)
	assert.Equal(t, "z + c1", f.Expression)

	got, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "z + c1", got.Expression)
}

func TestService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Create(ctx, "sin(x)")
	require.NoError(t, err)

	// Same function written with a different variable.
	_, err = svc.Create(ctx, "sin( Y )")
	require.Error(t, err)
	assert.ErrorIs(t, err, function.ErrDuplicate)

	fs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fs, 1)
}

func TestService_DuplicateAfterRestart(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	_, err := svc.Create(ctx, "cos(z)")
	require.NoError(t, err)

	restarted, err := function.NewService(ctx, s, function.DedupOptions{}, nil)
	require.NoError(t, err)
	_, err = restarted.Create(ctx, "cos(x)")
	assert.ErrorIs(t, err, function.ErrDuplicate)
}

func TestService_CreateInvalid(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), "sin(x")
	assert.ErrorIs(t, err, function.ErrSyntax)
}

func TestService_DeleteThenRecreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	f, err := svc.Create(ctx, "x^2")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.ID))

	_, err = svc.Get(ctx, f.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, f.ID), store.ErrNotFound)

	again, err := svc.Create(ctx, "x^2")
	require.NoError(t, err)
	assert.Equal(t, "z^2", again.Expression)
}

// racingRepo reports no existing function, as if a concurrent writer won
// between the lookup and the insert.
type racingRepo struct {
	function.Repository
}

func (racingRepo) ListFunctions(context.Context) ([]store.Function, error) { return nil, nil }
func (racingRepo) FunctionExists(context.Context, string) (bool, error)   { return false, nil }
func (racingRepo) CreateFunction(_ context.Context, e string) (*store.Function, error) {
	return nil, errors.Join(store.ErrDuplicate, errors.New(e))
}

func TestService_StorageUniqueViolationIsDuplicate(t *testing.T) {
	svc, err := function.NewService(context.Background(), racingRepo{}, function.DefaultDedupOptions(), nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "tan(x)")
	assert.ErrorIs(t, err, function.ErrDuplicate)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestNewService_NilRepository(t *testing.T) {
	_, err := function.NewService(context.Background(), nil, function.DefaultDedupOptions(), nil)
	assert.Error(t, err)
}
