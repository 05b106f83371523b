package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"
)

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// TokenId is the decimal representation of an unsigned 256 bit asset id
type TokenId string

func (i TokenId) String() string {
	return string(i)
}

// Normalize parses the id and renders it back without leading zeros
func (i TokenId) Normalize() (TokenId, error) {
	id, err := i.ToBigInt()
	if err != nil {
		return "", err
	}
	return TokenId(id.String()), nil
}

func (i TokenId) ToBigInt() (*big.Int, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok || id.Sign() < 0 {
		return nil, xerrors.Errorf("invalid token id %q: %w", string(i), ErrInvalidNumberFormat)
	}
	return id, nil
}

// ToBigInt parses a base 10 amount, negative values are accepted here and left
// to the caller to reject
func ToBigInt(num string) (*big.Int, error) {
	bn, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return nil, ErrInvalidNumberFormat
	}
	return bn, nil
}

// FormatUnits renders an amount in base units with the given decimals,
// e.g. 1500000000000000000 with 18 decimals is 1.5
func FormatUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}
