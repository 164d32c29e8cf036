package explore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/store"
	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

// ErrTooManyConstants is returned for functions with more than one
// constant; the grid has a single parameter axis.
var ErrTooManyConstants = errors.New("explore: function has more than one constant")

// Repository is what the Explorer reads and caches through. *store.Store
// implements it.
type Repository interface {
	GetFunction(ctx context.Context, id uint) (*store.Function, error)
	GetLimit(ctx context.Context, functionID uint, xIndex, yIndex int64) (*store.Limit, error)
	UpsertLimit(ctx context.Context, l *store.Limit) error
}

// Explorer computes limits at grid points. The x axis is the starting
// point of the iteration, the y axis the value of the function's constant.
type Explorer struct {
	repo   Repository
	opts   Options
	logger *zap.Logger
}

func NewExplorer(repo Repository, opts Options, logger *zap.Logger) *Explorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explorer{repo: repo, opts: opts, logger: logger.With(zap.String("component", "explore"))}
}

// Limit returns the cached limit at (xIndex, yIndex), computing and storing
// it on a miss.
func (e *Explorer) Limit(ctx context.Context, functionID uint, xIndex, yIndex int64) (*store.Limit, error) {
	if err := checkPoint(xIndex, yIndex); err != nil {
		return nil, err
	}
	l, err := e.repo.GetLimit(ctx, functionID, xIndex, yIndex)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return e.Refresh(ctx, functionID, xIndex, yIndex)
}

// Refresh recomputes the limit at (xIndex, yIndex) and overwrites the cache.
func (e *Explorer) Refresh(ctx context.Context, functionID uint, xIndex, yIndex int64) (*store.Limit, error) {
	if err := checkPoint(xIndex, yIndex); err != nil {
		return nil, err
	}
	f, err := e.repo.GetFunction(ctx, functionID)
	if err != nil {
		return nil, err
	}
	c, err := function.Canonicalize(f.Expression)
	if err != nil {
		return nil, fmt.Errorf("explore: stored function %d: %w", functionID, err)
	}
	if len(c.Constants) > 1 {
		return nil, fmt.Errorf("%w: %s", ErrTooManyConstants, f.Expression)
	}

	env := symbolic.Env{}
	if len(c.Constants) == 1 {
		env[c.Constants[0]] = store.IndexValue(yIndex)
	}
	res, err := Iterate(c.Expr, env, store.IndexValue(xIndex), e.opts)
	if err != nil {
		e.logger.Debug("no limit",
			zap.Uint("function_id", functionID),
			zap.Int64("x_index", xIndex),
			zap.Int64("y_index", yIndex),
			zap.Error(err))
		return nil, err
	}
	value, err := store.NewDecimal(res.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoLimit, err)
	}
	l := &store.Limit{FunctionID: functionID, XIndex: xIndex, YIndex: yIndex, Value: value}
	if err := e.repo.UpsertLimit(ctx, l); err != nil {
		return nil, err
	}
	e.logger.Debug("limit stored",
		zap.Uint("function_id", functionID),
		zap.Int64("x_index", xIndex),
		zap.Int64("y_index", yIndex),
		zap.Stringer("value", value),
		zap.Int("iterations", res.Iterations))
	return l, nil
}

func checkPoint(xIndex, yIndex int64) error {
	if err := store.CheckIndex(xIndex); err != nil {
		return err
	}
	return store.CheckIndex(yIndex)
}
