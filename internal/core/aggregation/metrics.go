package aggregation

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percentage renders part/whole*100 with one decimal place, and "0.0" when
// whole is zero.
func Percentage(part, whole int64) string {
	if whole == 0 {
		return "0.0"
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).StringFixed(1)
}

// RoundedAverage converts a nullable SQL average to a whole number, NULL as zero.
func RoundedAverage(avg decimal.NullDecimal) int64 {
	if !avg.Valid {
		return 0
	}
	return avg.Decimal.Round(0).IntPart()
}

// Outcome holds the offered/answered/abandoned counts of one report group.
type Outcome struct {
	Offered   int64
	Answered  int64
	Abandoned int64
}

// SuccessPercentage is answered/offered as a percentage.
func (o Outcome) SuccessPercentage() string { return Percentage(o.Answered, o.Offered) }

// AbandonPercentage is abandoned/offered as a percentage.
func (o Outcome) AbandonPercentage() string { return Percentage(o.Abandoned, o.Offered) }
