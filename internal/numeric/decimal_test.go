package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticPlainRange(t *testing.T) {
	a := FromInt(10)
	b := FromInt(4)

	assert.True(t, a.Add(b).Eq(FromInt(14)))
	assert.True(t, a.Sub(b).Eq(FromInt(6)))
	assert.True(t, a.Mul(b).Eq(FromInt(40)))
	assert.True(t, a.Div(b).Eq(FromFloat(2.5)))
	assert.True(t, FromInt(2).Pow(3).Eq(FromInt(8)))
	assert.True(t, FromInt(16).Sqrt().Eq(FromInt(4)))
	assert.True(t, FromFloat(19.6).Floor().Eq(FromInt(19)))
	assert.True(t, FromFloat(2.5).Round().Eq(FromInt(3)))
}

func TestSubSaturatesAtZero(t *testing.T) {
	assert.True(t, FromInt(3).Sub(FromInt(10)).IsZero())
	assert.True(t, FromInt(3).Sub(FromInt(3)).IsZero())
	assert.True(t, MustParse("1e400").Sub(MustParse("1e500")).IsZero())
}

func TestNegativeAndNaNBecomeZero(t *testing.T) {
	assert.True(t, FromFloat(-5).IsZero())
	assert.True(t, FromFloat(math.NaN()).IsZero())
	assert.True(t, FromInt(-1).IsZero())
}

func TestDivByZeroIsZero(t *testing.T) {
	assert.True(t, FromInt(5).Div(Zero).IsZero())
	assert.True(t, MustParse("1e500").Div(Zero).IsZero())
}

func TestBeyondFloatRange(t *testing.T) {
	big := MustParse("1e300")
	sq := big.Mul(big)
	assert.Equal(t, "1e600", sq.String())
	assert.True(t, sq.Gt(big))
	assert.True(t, sq.Div(big).Eq(big))
	assert.True(t, sq.Sqrt().Eq(big))
	assert.Equal(t, math.Inf(1), sq.Float64())

	// collapsing back into plain range
	back := sq.Div(MustParse("1e590"))
	assert.InDelta(t, 1e10, back.Float64(), 1e-3)
}

func TestAddAcrossMagnitudes(t *testing.T) {
	huge := MustParse("5e400")
	assert.True(t, huge.Add(FromInt(1)).Eq(huge), "smaller addend is below precision")
	assert.True(t, FromInt(1).Add(huge).Eq(huge))

	sum := MustParse("5e400").Add(MustParse("5e400"))
	assert.Equal(t, "1e401", sum.String())
}

func TestPowLargeExponent(t *testing.T) {
	v := FromFloat(1.5).Pow(100000)
	assert.InDelta(t, 100000*math.Log10(1.5), v.Log10(), 1e-6)
	assert.True(t, v.Gt(MustParse("1e17000")))

	assert.True(t, FromFloat(1.4).PowDecimal(Zero).Eq(One))
	assert.True(t, Zero.Pow(3).IsZero())
	assert.True(t, FromInt(4).Pow(0.5).Eq(FromInt(2)))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"plain less", "1", "2", -1},
		{"plain equal", "7.5", "7.5", 0},
		{"plain vs big", "1e299", "1e301", -1},
		{"big vs plain", "2e400", "5", 1},
		{"big exponents", "9e400", "1e401", -1},
		{"big mantissas", "2e400", "3e400", -1},
		{"big equal", "2e400", "2e400", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.a).Cmp(MustParse(tt.b)))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0", false},
		{"42", "42", false},
		{" 12.5 ", "12.5", false},
		{"1e21", "1e+21", false},
		{"3.2e4500", "3.2e4500", false},
		{"1.5E+350", "1.5e350", false},
		{"-7", "0", false},
		{"", "", true},
		{"abc", "", true},
		{"NaN", "", true},
		{"Inf", "", true},
		{"1ex500", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDecimal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "123456789", "0.25", "1.2345e+25", "7.77e777"} {
		d := MustParse(s)
		back, err := Parse(d.String())
		require.NoError(t, err)
		assert.True(t, d.Eq(back), s)
	}
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		V Decimal `json:"v"`
	}

	out, err := json.Marshal(wrapper{V: MustParse("1.5e400")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"1.5e400"}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"v":"250"}`), &w))
	assert.True(t, w.V.Eq(FromInt(250)))

	// bare numbers from older saves
	require.NoError(t, json.Unmarshal([]byte(`{"v":1234.5}`), &w))
	assert.True(t, w.V.Eq(FromFloat(1234.5)))

	require.NoError(t, json.Unmarshal([]byte(`{"v":null}`), &w))
	assert.True(t, w.V.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"v":"lots"}`), &w))
}

func TestScan(t *testing.T) {
	var d Decimal
	require.NoError(t, d.Scan("9e999"))
	assert.Equal(t, "9e999", d.String())
	require.NoError(t, d.Scan([]byte("12")))
	assert.True(t, d.Eq(FromInt(12)))
	require.NoError(t, d.Scan(int64(7)))
	assert.True(t, d.Eq(FromInt(7)))
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(true))

	v, err := MustParse("4e400").Value()
	require.NoError(t, err)
	assert.Equal(t, "4e400", v)
}

func TestInt64Saturates(t *testing.T) {
	assert.Equal(t, int64(19), FromFloat(19.9).Int64())
	assert.Equal(t, int64(math.MaxInt64), MustParse("1e400").Int64())
}

func TestMinMax(t *testing.T) {
	a, b := FromInt(3), MustParse("1e320")
	assert.True(t, a.Max(b).Eq(b))
	assert.True(t, a.Min(b).Eq(a))
}
