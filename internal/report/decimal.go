package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DecimalLike is a monetary value as an order source hands it over: a native
// number, a numeric string, a decimal.js style {sign, exponent, digits} triple
// or a Postgres numeric. ToFloat is the only way to read one.
type DecimalLike interface {
	decimalLike()
}

type Number float64

type NumericString string

// DecimalParts is an arbitrary-precision decimal in decimal.js layout. Digits
// holds base 1e7 limbs, the first one unpadded.
type DecimalParts struct {
	Sign     int
	Exponent int
	Digits   []int64
}

type Numeric pgtype.Numeric

func (Number) decimalLike()        {}
func (NumericString) decimalLike() {}
func (DecimalParts) decimalLike()  {}
func (Numeric) decimalLike()       {}

const limbWidth = 7

// ToFloat canonicalizes any DecimalLike into a float64. Missing, malformed and
// non-finite values read as 0.
func ToFloat(value DecimalLike) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case Number:
		return finite(float64(v))
	case NumericString:
		return parseNumericString(string(v))
	case DecimalParts:
		return v.float()
	case *DecimalParts:
		if v == nil {
			return 0
		}
		return v.float()
	case Numeric:
		return numericToFloat(pgtype.Numeric(v))
	default:
		return 0
	}
}

func (p DecimalParts) float() float64 {
	if len(p.Digits) == 0 {
		return 0
	}
	var b strings.Builder
	for i, limb := range p.Digits {
		if limb < 0 {
			return 0
		}
		if i == 0 {
			b.WriteString(strconv.FormatInt(limb, 10))
			continue
		}
		if limb >= 10_000_000 {
			return 0
		}
		fmt.Fprintf(&b, "%0*d", limbWidth, limb)
	}
	digits := b.String()
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0
	}
	d = d.Shift(int32(p.Exponent - len(digits) + 1))
	if p.Sign < 0 {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return finite(f)
}

func parseNumericString(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return finite(f)
}

func numericToFloat(value pgtype.Numeric) float64 {
	if !value.Valid || value.NaN {
		return 0
	}
	f, err := value.Float64Value()
	if err == nil && f.Valid {
		return finite(f.Float64)
	}
	text, err := value.MarshalJSON()
	if err != nil {
		return 0
	}
	return parseNumericString(string(text))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

type decimalObject struct {
	S        *int    `json:"s"`
	E        *int    `json:"e"`
	D        []int64 `json:"d"`
	Sign     *int    `json:"sign"`
	Exponent *int    `json:"exponent"`
	Digits   []int64 `json:"digits"`
}

// ParseDecimalJSON decodes a JSON number, numeric string, null or decimal
// object ({"s","e","d"} or {"sign","exponent","digits"}).
func ParseDecimalJSON(raw json.RawMessage) (DecimalLike, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return NumericString(s), nil
	case '{':
		var obj decimalObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, err
		}
		parts := DecimalParts{Sign: 1, Digits: obj.D}
		if obj.Digits != nil {
			parts.Digits = obj.Digits
		}
		if obj.S != nil {
			parts.Sign = *obj.S
		} else if obj.Sign != nil {
			parts.Sign = *obj.Sign
		}
		if obj.E != nil {
			parts.Exponent = *obj.E
		} else if obj.Exponent != nil {
			parts.Exponent = *obj.Exponent
		}
		return parts, nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, fmt.Errorf("decimal: unsupported value %s", string(trimmed))
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}
