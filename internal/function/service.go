package function

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"github.com/njchilds90/fixpoint-explorer/internal/store"
)

// Repository is the persistence the service needs. *store.Store
// implements it.
type Repository interface {
	CreateFunction(ctx context.Context, expression string) (*store.Function, error)
	ListFunctions(ctx context.Context) ([]store.Function, error)
	GetFunction(ctx context.Context, id uint) (*store.Function, error)
	FunctionExists(ctx context.Context, expression string) (bool, error)
	DeleteFunction(ctx context.Context, id uint) error
}

// DedupOptions sizes the duplicate prefilter.
type DedupOptions struct {
	ExpectedFunctions uint
	FalsePositiveRate float64
}

func DefaultDedupOptions() DedupOptions {
	return DedupOptions{ExpectedFunctions: 10000, FalsePositiveRate: 0.01}
}

// Service registers, lists and deletes functions.
type Service struct {
	repo   Repository
	logger *zap.Logger

	// seen holds every canonical string stored since startup. A miss means
	// the string is certainly new; a hit is confirmed against storage.
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewService builds a service and loads the existing canonical strings into
// the prefilter.
func NewService(ctx context.Context, repo Repository, opts DedupOptions, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("function: repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ExpectedFunctions == 0 || opts.FalsePositiveRate <= 0 || opts.FalsePositiveRate >= 1 {
		opts = DefaultDedupOptions()
	}
	s := &Service{
		repo:   repo,
		logger: logger.With(zap.String("component", "function")),
		seen:   bloom.NewWithEstimates(opts.ExpectedFunctions, opts.FalsePositiveRate),
	}
	existing, err := repo.ListFunctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("function: load existing: %w", err)
	}
	for _, f := range existing {
		s.seen.Add([]byte(f.Expression))
	}
	s.logger.Debug("dedup filter loaded", zap.Int("functions", len(existing)))
	return s, nil
}

// Create canonicalizes raw and stores it. A function that is already stored
// is rejected with KindDuplicate.
func (s *Service) Create(ctx context.Context, raw string) (*store.Function, error) {
	c, err := Canonicalize(raw)
	if err != nil {
		s.logger.Debug("function rejected", zap.String("input", raw), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	maybeSeen := s.seen.Test([]byte(c.Expression))
	s.mu.Unlock()
	if maybeSeen {
		exists, err := s.repo.FunctionExists(ctx, c.Expression)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicate(raw, c.Expression, nil)
		}
	}

	f, err := s.repo.CreateFunction(ctx, c.Expression)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, duplicate(raw, c.Expression, err)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.seen.Add([]byte(c.Expression))
	s.mu.Unlock()
	s.logger.Info("function registered",
		zap.Uint("id", f.ID),
		zap.String("input", raw),
		zap.String("expression", f.Expression))
	return f, nil
}

func duplicate(raw, expression string, err error) *ValidationError {
	return invalid(KindDuplicate, raw, err, "function %s already exists", expression)
}

func (s *Service) List(ctx context.Context) ([]store.Function, error) {
	return s.repo.ListFunctions(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*store.Function, error) {
	return s.repo.GetFunction(ctx, id)
}

// Delete removes a function and its limits. The prefilter keeps the entry;
// a later Create of the same function falls through to storage.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.DeleteFunction(ctx, id); err != nil {
		return err
	}
	s.logger.Info("function deleted", zap.Uint("id", id))
	return nil
}
