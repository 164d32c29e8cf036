package store

import (
	"fmt"
	"math"
	"time"
)

// Function is a registered function in canonical form. Rows are never
// updated; deleting one deletes its limits.
type Function struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Expression string    `gorm:"column:expression;type:varchar(1024);uniqueIndex;not null" json:"expression"`
	CreatedAt  time.Time `json:"created_at"`
	Limits     []Limit   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Function) TableName() string { return "functions" }

func (f Function) String() string { return f.Expression }

// Limit caches the limiting value of a function at one grid point.
type Limit struct {
	ID         uint      `gorm:"primaryKey"`
	FunctionID uint      `gorm:"not null;uniqueIndex:idx_limit_point,priority:1"`
	XIndex     int64     `gorm:"column:x_index;not null;uniqueIndex:idx_limit_point,priority:2"`
	YIndex     int64     `gorm:"column:y_index;not null;uniqueIndex:idx_limit_point,priority:3"`
	Value      Decimal   `gorm:"type:varchar(48);not null"`
	UpdatedAt  time.Time
}

func (Limit) TableName() string { return "limits" }

// gridScale maps indices in [0, 2^63) onto [0, 1).
var gridScale = math.Exp2(63)

func (l Limit) XValue() float64 { return IndexValue(l.XIndex) }
func (l Limit) YValue() float64 { return IndexValue(l.YIndex) }

func (l Limit) String() string {
	return fmt.Sprintf("%d @ (%d,%d)", l.FunctionID, l.XIndex, l.YIndex)
}

// IndexValue translates a grid index into its coordinate.
func IndexValue(index int64) float64 { return float64(index) / gridScale }

// CheckIndex rejects indices outside [0, 2^63).
func CheckIndex(index int64) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexRange, index)
	}
	return nil
}
