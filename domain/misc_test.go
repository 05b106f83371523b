package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenIdNormalize(t *testing.T) {
	req := require.New(t)

	id, err := TokenId("007").Normalize()
	req.NoError(err)
	req.Equal(TokenId("7"), id)

	_, err = TokenId("-1").Normalize()
	req.ErrorIs(err, ErrInvalidNumberFormat)

	_, err = TokenId("0x01").Normalize()
	req.ErrorIs(err, ErrInvalidNumberFormat)
}

func TestAddress(t *testing.T) {
	req := require.New(t)
	a := Address("0xAbC")
	req.True(a.Equals("0xabc"))
	req.Equal(Address("0xabc"), a.ToLower())
	req.True(Address("").IsEmpty())
	req.True(EmptyAddress.IsEmpty())
	req.False(a.IsEmpty())
}

func TestFormatUnits(t *testing.T) {
	req := require.New(t)
	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	req.Equal("1.5", FormatUnits(amount, 18).String())
	req.Equal("0", FormatUnits(nil, 18).String())
	req.Equal("1000", FormatUnits(big.NewInt(1000), 0).String())
}
