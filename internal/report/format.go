package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	jo  = 1e12
	eok = 1e8
	man = 1e4
)

// FormatAmount renders a money amount for display. KRW uses 조/억/만 원 units,
// every other currency a compact K/M/B/T suffix.
func FormatAmount(v float64, currency string) string {
	if currency == "KRW" {
		return formatKRW(v)
	}
	if currency == "" {
		currency = "USD"
	}
	return compact(v) + " " + currency
}

func formatKRW(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= jo:
		return fmt.Sprintf("%.1f조 원", v/jo)
	case a >= eok:
		return fmt.Sprintf("%.0f억 원", v/eok)
	case a >= man:
		return fmt.Sprintf("%.0f만 원", v/man)
	default:
		return groupThousands(v) + " 원"
	}
}

func compact(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e12:
		return fmt.Sprintf("%.1fT", v/1e12)
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// groupThousands formats v rounded to an integer with comma separators.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)
	var b strings.Builder
	if v < 0 && s != "0" {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatPrice keeps cents for non-KRW quotes; KRW prices are whole won.
func FormatPrice(v float64, currency string) string {
	if currency == "KRW" {
		return groupThousands(v) + " 원"
	}
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// FormatPercent renders a fraction as a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatAmountSlope renders a per-quarter change of a money line item.
func FormatAmountSlope(v float64, currency string) string {
	return sign(v) + FormatAmount(v, currency) + " per quarter"
}

// FormatRatioSlope renders a per-quarter change of a margin in percentage points.
func FormatRatioSlope(v float64) string {
	return fmt.Sprintf("%s%.2fpp per quarter", sign(v), v*100)
}

// FormatTrend turns a moving-average slope into words.
func FormatTrend(slope float64) string {
	switch {
	case slope > 10:
		return fmt.Sprintf("strong rise (+%.1f)", slope)
	case slope > 0:
		return fmt.Sprintf("gentle rise (+%.1f)", slope)
	case slope == 0:
		return "flat (0.0)"
	case slope > -10:
		return fmt.Sprintf("gentle fall (%.1f)", slope)
	default:
		return fmt.Sprintf("strong fall (%.1f)", slope)
	}
}

func FormatRatio(v float64) string {
	return fmt.Sprintf("%.2fx", v)
}

func sign(v float64) string {
	if v >= 0 {
		return "+"
	}
	return ""
}
