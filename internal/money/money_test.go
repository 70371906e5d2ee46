package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal_Rounding(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"100.00", 10000},
		{"100.004", 10000},
		{"100.005", 10001},
		{"0.01", 1},
		{"0", 0},
		{"-0.005", -1},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, FromDecimal(d), "input %s", tt.in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "119.00", Cents(11900).String())
	assert.Equal(t, "0.07", Cents(7).String())
	assert.Equal(t, "-1.50", Cents(-150).String())
}

func TestParse(t *testing.T) {
	c, err := Parse("119.00")
	require.NoError(t, err)
	assert.Equal(t, Cents(11900), c)

	c, err = Parse("0.01")
	require.NoError(t, err)
	assert.Equal(t, Cents(1), c)
}

func TestParse_SubCent(t *testing.T) {
	_, err := Parse("10.001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub-cent")
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("abc")
	require.Error(t, err)
}

func TestDecimal_RoundTrip(t *testing.T) {
	for _, c := range []Cents{0, 1, 99, 11900, -250} {
		assert.Equal(t, c, FromDecimal(c.Decimal()))
	}
}
