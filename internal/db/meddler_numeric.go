package db

import (
	"database/sql"
	"fmt"
	"math/big"

	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
)

func init() {
	meddler.Register("decimal", DecimalMeddler{})
	meddler.Register("bigint", BigIntMeddler{})
}

// DecimalMeddler stores decimal.Decimal values as exact TEXT.
// A nil *decimal.Decimal maps to NULL.
type DecimalMeddler struct{}

func (DecimalMeddler) PreRead(fieldAddr any) (scanTarget any, err error) {
	return new(sql.NullString), nil
}

func (DecimalMeddler) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case **decimal.Decimal:
		if !ns.Valid {
			*ptr = nil
			return nil
		}
		d, err := decimal.NewFromString(ns.String)
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", ns.String, err)
		}
		*ptr = &d
	case *decimal.Decimal:
		if !ns.Valid {
			*ptr = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(ns.String)
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", ns.String, err)
		}
		*ptr = d
	default:
		return fmt.Errorf("expected *decimal.Decimal or **decimal.Decimal, got %T", fieldAddr)
	}

	return nil
}

func (DecimalMeddler) PreWrite(field any) (saveValue any, err error) {
	switch v := field.(type) {
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return v.String(), nil
	case decimal.Decimal:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("expected decimal.Decimal or *decimal.Decimal, got %T", field)
	}
}

// BigIntMeddler stores raw on-chain integers as base 10 TEXT, keeping full uint256 precision.
type BigIntMeddler struct{}

func (BigIntMeddler) PreRead(fieldAddr any) (scanTarget any, err error) {
	return new(sql.NullString), nil
}

func (BigIntMeddler) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(**big.Int)
	if !ok {
		return fmt.Errorf("expected **big.Int, got %T", fieldAddr)
	}

	if !ns.Valid {
		*ptr = nil
		return nil
	}

	v, ok := new(big.Int).SetString(ns.String, 10) //nolint:mnd
	if !ok {
		return fmt.Errorf("invalid integer %q", ns.String)
	}
	*ptr = v

	return nil
}

func (BigIntMeddler) PreWrite(field any) (saveValue any, err error) {
	v, ok := field.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected *big.Int, got %T", field)
	}
	if v == nil {
		return nil, nil
	}
	return v.String(), nil
}
