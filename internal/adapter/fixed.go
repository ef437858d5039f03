package adapter

import (
	"strconv"
	"strings"

	"github.com/yanun0323/decimal"
)

// FixedString renders a fixed-point integer with the given decimal scale
// as a plain decimal string, e.g. FixedString(123450, 4) == "12.345".
func FixedString(v int64, scale int) string {
	if scale <= 0 {
		return strconv.FormatInt(v, 10)
	}
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	cut := len(digits) - scale
	out := digits[:cut] + "." + digits[cut:]
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if neg {
		out = "-" + out
	}
	return out
}

// FixedDecimal converts a fixed-point integer into a decimal value for
// consumers that want exact arithmetic on payload prices and sizes.
func FixedDecimal(v int64, scale int) decimal.Decimal {
	return decimal.Require(FixedString(v, scale))
}
