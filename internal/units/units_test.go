package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"1.5", 6, "1500000"},
		{"0.000001", 6, "1"},
		{".25", 2, "25"},
		{"2000", 18, "2000000000000000000000"},
		{"1.500", 1, "15"},
		{" 42 ", 0, "42"},
		{"0", 18, "0"},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in, tc.decimals)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String(), tc.in)
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "1e18", "1.2.3", "0x10", "1.0000001"} {
		_, err := Parse(in, 6)
		require.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestParsePositive(t *testing.T) {
	_, err := ParsePositive("0.0", 18)
	require.ErrorIs(t, err, ErrInvalidAmount)

	v, err := ParsePositive("3", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int64())
}

func TestValidatePositive(t *testing.T) {
	for _, in := range []string{"1", "0.5", ".25", " 7 ", "1.000000000000000000000001"} {
		assert.NoError(t, ValidatePositive(in), in)
	}
	for _, in := range []string{"", "abc", "-1", "1e3", "0", "0.000", "0x10"} {
		assert.ErrorIs(t, ValidatePositive(in), ErrInvalidAmount, in)
	}
}

func TestFormat(t *testing.T) {
	v, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", Format(v, 18))
	assert.Equal(t, "100", Format(big.NewInt(100_000_000), 6))
	assert.Equal(t, "0", Format(nil, 6))
	assert.Equal(t, "7", Format(big.NewInt(7), 0))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, "0.25", Ratio(big.NewInt(1), big.NewInt(4), 6))
	assert.Equal(t, "0", Ratio(big.NewInt(1), big.NewInt(0), 6))
}
