// Package store persists functions and their cached limits with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrNotFound     = errors.New("store: not found")
	ErrDuplicate    = errors.New("store: duplicate")
	ErrIndexRange   = errors.New("store: grid index out of range")
	ErrDecimalRange = errors.New("store: decimal out of range")
)

// Store is the relational store. It is safe for concurrent use.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the sqlite database named by dsn. ":memory:" gives a
// private in-memory database.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: dsn is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	// sqlite serializes writers; one connection also keeps :memory: a single database.
	sqlDB.SetMaxOpenConns(1)
	return &Store{db: db, logger: logger.With(zap.String("component", "store"))}, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Function{}, &Limit{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// ============================================================
// Functions
// ============================================================

func (s *Store) CreateFunction(ctx context.Context, expression string) (*Function, error) {
	f := &Function{Expression: expression}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, expression)
		}
		return nil, fmt.Errorf("store: create function: %w", err)
	}
	s.logger.Debug("function created", zap.Uint("id", f.ID), zap.String("expression", expression))
	return f, nil
}

func (s *Store) ListFunctions(ctx context.Context) ([]Function, error) {
	var fs []Function
	if err := s.db.WithContext(ctx).Order("id").Find(&fs).Error; err != nil {
		return nil, fmt.Errorf("store: list functions: %w", err)
	}
	return fs, nil
}

func (s *Store) GetFunction(ctx context.Context, id uint) (*Function, error) {
	var f Function
	err := s.db.WithContext(ctx).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: function %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get function %d: %w", id, err)
	}
	return &f, nil
}

func (s *Store) FunctionExists(ctx context.Context, expression string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Function{}).Where("expression = ?", expression).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("store: lookup function: %w", err)
	}
	return n > 0, nil
}

// DeleteFunction removes a function and its limits in one transaction.
func (s *Store) DeleteFunction(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("function_id = ?", id).Delete(&Limit{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Function{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: function %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("store: delete function %d: %w", id, err)
	}
	s.logger.Debug("function deleted", zap.Uint("id", id))
	return nil
}

// ============================================================
// Limits
// ============================================================

// UpsertLimit stores l, replacing the value of an existing limit at the
// same grid point.
func (s *Store) UpsertLimit(ctx context.Context, l *Limit) error {
	if err := CheckIndex(l.XIndex); err != nil {
		return err
	}
	if err := CheckIndex(l.YIndex); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "function_id"}, {Name: "x_index"}, {Name: "y_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(l).Error
	if err != nil {
		return fmt.Errorf("store: upsert limit %s: %w", l, err)
	}
	return nil
}

func (s *Store) GetLimit(ctx context.Context, functionID uint, xIndex, yIndex int64) (*Limit, error) {
	var l Limit
	err := s.db.WithContext(ctx).
		Where("function_id = ? AND x_index = ? AND y_index = ?", functionID, xIndex, yIndex).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: limit %d @ (%d,%d)", ErrNotFound, functionID, xIndex, yIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get limit: %w", err)
	}
	return &l, nil
}

func (s *Store) ListLimits(ctx context.Context, functionID uint) ([]Limit, error) {
	var ls []Limit
	err := s.db.WithContext(ctx).
		Where("function_id = ?", functionID).
		Order("x_index, y_index").
		Find(&ls).Error
	if err != nil {
		return nil, fmt.Errorf("store: list limits: %w", err)
	}
	return ls, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
