package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

func init() {
	meddler.Register("address", AddressMeddler)
	meddler.Register("hash", HashMeddler)
}

var (
	// AddressMeddler stores common.Address values as lowercased hex strings.
	AddressMeddler = hexMeddler[common.Address]{
		parse:  common.HexToAddress,
		format: func(a common.Address) string { return strings.ToLower(a.Hex()) },
	}

	// HashMeddler stores common.Hash values as hex strings.
	HashMeddler = hexMeddler[common.Hash]{
		parse:  common.HexToHash,
		format: common.Hash.Hex,
	}
)

// hexMeddler converts between fixed size hex types and nullable TEXT columns.
// Both T and *T fields are supported; a nil *T is written as NULL.
type hexMeddler[T common.Address | common.Hash] struct {
	parse  func(string) T
	format func(T) string
}

func (h hexMeddler[T]) PreRead(fieldAddr any) (scanTarget any, err error) {
	return new(sql.NullString), nil
}

func (h hexMeddler[T]) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case **T:
		if !ns.Valid {
			*ptr = nil
			return nil
		}
		v := h.parse(ns.String)
		*ptr = &v
	case *T:
		if !ns.Valid {
			var zero T
			*ptr = zero
			return nil
		}
		*ptr = h.parse(ns.String)
	default:
		return fmt.Errorf("unsupported field type %T", fieldAddr)
	}

	return nil
}

func (h hexMeddler[T]) PreWrite(field any) (saveValue any, err error) {
	switch v := field.(type) {
	case *T:
		if v == nil {
			return nil, nil
		}
		return h.format(*v), nil
	case T:
		return h.format(v), nil
	default:
		return nil, fmt.Errorf("unsupported field type %T", field)
	}
}
