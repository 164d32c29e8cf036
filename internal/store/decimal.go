package store

import (
	"database/sql/driver"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DecimalPlaces is the number of fractional digits a Decimal keeps.
	DecimalPlaces = 20
	// DecimalDigits is the total number of digits a Decimal may have.
	DecimalDigits = 40
)

// decimalLimit is the smallest magnitude that no longer fits.
var decimalLimit = decimal.New(1, DecimalDigits-DecimalPlaces)

// Decimal is a fixed-precision decimal stored as text so no backend
// rounds it through a float.
type Decimal struct {
	d decimal.Decimal
}

// NewDecimal rounds f to DecimalPlaces fractional digits.
func NewDecimal(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("%w: %v", ErrDecimalRange, f)
	}
	return fit(decimal.NewFromFloat(f).Round(DecimalPlaces))
}

// ParseDecimal reads a plain decimal literal such as "-0.25". Exponents and
// digits beyond DecimalPlaces are rejected.
func ParseDecimal(s string) (Decimal, error) {
	if strings.ContainsAny(s, "eE") || !strings.ContainsAny(s, "0123456789") {
		return Decimal{}, fmt.Errorf("store: invalid decimal %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("store: invalid decimal %q: %w", s, err)
	}
	if !d.Equal(d.Round(DecimalPlaces)) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalRange, s)
	}
	return fit(d)
}

func fit(d decimal.Decimal) (Decimal, error) {
	if d.Abs().GreaterThanOrEqual(decimalLimit) {
		return Decimal{}, fmt.Errorf("%w: %s", ErrDecimalRange, d.String())
	}
	return Decimal{d: d}, nil
}

func (d Decimal) String() string { return d.d.StringFixed(DecimalPlaces) }

func (d Decimal) Float64() float64 { return d.d.InexactFloat64() }

func (d Decimal) Rat() *big.Rat { return d.d.Rat() }

func (d Decimal) Equal(o Decimal) bool { return d.d.Equal(o.d) }

// Value implements driver.Valuer.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Float columns are rounded, not rejected.
func (d *Decimal) Scan(src interface{}) error {
	var v decimal.Decimal
	if err := v.Scan(src); err != nil {
		return fmt.Errorf("store: cannot scan %T into Decimal: %w", src, err)
	}
	parsed, err := fit(v.Round(DecimalPlaces))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
