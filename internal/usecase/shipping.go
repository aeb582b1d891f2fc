package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shelfscout/backend/internal/domain"
)

// Flat-rate envelope tier: thin parcels under 60cm combined ship at this fee
// regardless of the size bands below.
const (
	envelopeFee       = 290
	envelopeMaxHeight = 3.0
	envelopeMaxTotal  = 60.0
)

// shippingBands is the carrier tariff by combined size (cm), inclusive upper bounds.
var shippingBands = []struct {
	maxTotal float64
	fee      int
}{
	{60, 600},
	{80, 700},
	{100, 800},
	{120, 900},
	{140, 1000},
	{160, 1100},
	{170, 1300},
	{180, 1500},
	{200, 1800},
}

// ShippingFee returns the shipping fee in yen for a parcel with the given
// dimensions in centimeters. ok is false when the input is invalid or the
// parcel exceeds the largest band.
func ShippingFee(height, length, width float64) (fee int, ok bool) {
	for _, v := range []float64{height, length, width} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, false
		}
	}

	total := height + length + width
	if height <= envelopeMaxHeight && total < envelopeMaxTotal {
		return envelopeFee, true
	}

	for _, band := range shippingBands {
		if total <= band.maxTotal {
			return band.fee, true
		}
	}
	return 0, false
}

// shippingFeeFromText parses textual dimensions and looks up the fee. Any
// unparseable value yields ok == false.
func shippingFeeFromText(height, length, width string) (int, bool) {
	h, errH := parseDimension(height)
	l, errL := parseDimension(length)
	w, errW := parseDimension(width)
	if errH != nil || errL != nil || errW != nil {
		return 0, false
	}
	return ShippingFee(h, l, w)
}

// parseDimension parses a measurement such as "12.5" or "12.5 cm".
func parseDimension(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "cm"))
	if s == "" {
		return 0, fmt.Errorf("empty dimension")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid dimension %q: %w", s, err)
	}
	return v, nil
}

// FormatShippingEstimate renders a fee lookup for display.
func FormatShippingEstimate(fee int, ok bool) string {
	if !ok {
		return domain.ShippingUnavailable
	}
	return formatYen(int64(fee))
}

// formatYen renders an integer amount as ¥1,234.
func formatYen(amount int64) string {
	if amount < 0 {
		return "-¥" + groupDigits(-amount)
	}
	return "¥" + groupDigits(amount)
}

// groupDigits inserts thousands separators into a non-negative integer.
func groupDigits(n int64) string {
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
