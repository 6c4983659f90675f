package report

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestToFloatDecimalParts(t *testing.T) {
	cases := []struct {
		name     string
		value    DecimalParts
		expected float64
	}{
		{name: "single digit scaled up", value: DecimalParts{Sign: 1, Exponent: 2, Digits: []int64{5}}, expected: 500},
		{name: "negative sign", value: DecimalParts{Sign: -1, Exponent: 3, Digits: []int64{12}}, expected: -1200},
		{name: "fractional exponent", value: DecimalParts{Sign: 1, Exponent: -2, Digits: []int64{125}}, expected: 0.0125},
		{name: "value below ten", value: DecimalParts{Sign: 1, Exponent: 0, Digits: []int64{25}}, expected: 2.5},
		{name: "multiple limbs", value: DecimalParts{Sign: 1, Exponent: 1, Digits: []int64{12, 5000000}}, expected: 12.5},
		{name: "padded second limb", value: DecimalParts{Sign: 1, Exponent: 7, Digits: []int64{1, 42}}, expected: 10000042},
		{name: "no digits", value: DecimalParts{Sign: 1, Exponent: 4}, expected: 0},
		{name: "negative limb", value: DecimalParts{Sign: 1, Exponent: 0, Digits: []int64{-3}}, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToFloat(tc.value); math.Abs(got-tc.expected) > 1e-9 {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestToFloatVariants(t *testing.T) {
	var numeric pgtype.Numeric
	if err := numeric.Scan("1234.56"); err != nil {
		t.Fatalf("scan numeric: %v", err)
	}

	cases := []struct {
		name     string
		value    DecimalLike
		expected float64
	}{
		{name: "nil", value: nil, expected: 0},
		{name: "number", value: Number(42.5), expected: 42.5},
		{name: "nan number", value: Number(math.NaN()), expected: 0},
		{name: "infinite number", value: Number(math.Inf(1)), expected: 0},
		{name: "numeric string", value: NumericString(" 19.99 "), expected: 19.99},
		{name: "blank string", value: NumericString(""), expected: 0},
		{name: "garbage string", value: NumericString("abc"), expected: 0},
		{name: "postgres numeric", value: Numeric(numeric), expected: 1234.56},
		{name: "invalid postgres numeric", value: Numeric(pgtype.Numeric{}), expected: 0},
		{name: "pointer parts", value: &DecimalParts{Sign: 1, Exponent: 1, Digits: []int64{15}}, expected: 15},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToFloat(tc.value); math.Abs(got-tc.expected) > 1e-9 {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestParseDecimalJSON(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "number", raw: `12.75`, expected: 12.75},
		{name: "string", raw: `"8000.00"`, expected: 8000},
		{name: "null", raw: `null`, expected: 0},
		{name: "short decimal object", raw: `{"s":1,"e":2,"d":[5]}`, expected: 500},
		{name: "long decimal object", raw: `{"sign":-1,"exponent":0,"digits":[75]}`, expected: -7.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := ParseDecimalJSON(json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ToFloat(value); math.Abs(got-tc.expected) > 1e-9 {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}

	if _, err := ParseDecimalJSON(json.RawMessage(`true`)); err == nil {
		t.Fatalf("expected error for boolean input")
	}
}
