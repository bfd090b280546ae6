// Package pricing quotes rentals with tiered discounts. Two packings are
// computed for every range and the cheaper one wins:
//
//   - month-first: each 30-day block is billed as 26 day-units, the remainder
//     is priced under the week rule restricted to that remainder;
//   - week-first: one free day per full week across the whole span, capped at
//     three free days.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
)

const (
	daysPerMonthBlock  = 30
	billedDaysPerMonth = 26
	daysPerWeek        = 7
	maxFreeWeekDays    = 3
)

// Rate carries the per-day amount and currency used for quoting.
type Rate struct {
	Day      decimal.Decimal
	Currency enums.Currency
}

// Line is one itemized entry of a quote breakdown.
type Line struct {
	Period     string          `json:"period"`
	Units      int             `json:"units"`
	UnitAmount decimal.Decimal `json:"unit_amount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Note       string          `json:"note,omitempty"`
}

// Quote is the priced result for a date range.
type Quote struct {
	Days     int             `json:"days"`
	Total    decimal.Decimal `json:"total"`
	Currency enums.Currency  `json:"currency"`
	Lines    []Line          `json:"breakdown"`
}

// QuoteRange prices the half-open range [start, end) at the given rate.
// The range must span at least one whole day and the day rate must not be
// negative.
func QuoteRange(start, end time.Time, rate Rate) (Quote, error) {
	if !start.Before(end) {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	if rate.Day.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "day rate must be zero or positive")
	}

	totalDays := int(end.Sub(start).Hours() / 24)
	if totalDays < 1 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "range must cover at least one day")
	}

	currency := rate.Currency
	if currency == "" {
		currency = enums.CurrencyEUR
	}

	monthFirst := packMonthFirst(totalDays, rate.Day)
	weekFirst := packWeekFirst(totalDays, rate.Day)

	best := monthFirst
	if weekFirst.Total.LessThan(monthFirst.Total) {
		best = weekFirst
	}
	best.Days = totalDays
	best.Currency = currency
	return best, nil
}

// MinorUnits converts a two-decimal currency amount to integer minor units.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

func packMonthFirst(totalDays int, dayRate decimal.Decimal) Quote {
	months := totalDays / daysPerMonthBlock
	remainder := totalDays % daysPerMonthBlock
	weeks := remainder / daysPerWeek
	freeDays := min(weeks, maxFreeWeekDays)
	singleDays := remainder % daysPerWeek

	var lines []Line
	if months > 0 {
		lines = append(lines, monthLine(months, dayRate))
	}
	lines = appendWeekAndDayLines(lines, weeks, freeDays, singleDays, dayRate)
	return quoteFromLines(lines)
}

func packWeekFirst(totalDays int, dayRate decimal.Decimal) Quote {
	weeks := totalDays / daysPerWeek
	freeDays := min(weeks, maxFreeWeekDays)
	singleDays := totalDays % daysPerWeek

	lines := appendWeekAndDayLines(nil, weeks, freeDays, singleDays, dayRate)
	return quoteFromLines(lines)
}

func monthLine(months int, dayRate decimal.Decimal) Line {
	unit := dayRate.Mul(decimal.NewFromInt(billedDaysPerMonth))
	return Line{
		Period:     "month",
		Units:      months,
		UnitAmount: unit,
		Subtotal:   unit.Mul(decimal.NewFromInt(int64(months))),
		Note:       "30-day block charged as 26 days",
	}
}

func appendWeekAndDayLines(lines []Line, weeks, freeDays, singleDays int, dayRate decimal.Decimal) []Line {
	if weeks > 0 {
		chargedWeekDays := weeks*daysPerWeek - freeDays
		lines = append(lines, Line{
			Period:     "week",
			Units:      weeks,
			UnitAmount: dayRate,
			Subtotal:   dayRate.Mul(decimal.NewFromInt(int64(chargedWeekDays))),
			Note: fmt.Sprintf("%d×7 days charged as %d days (tiered week discount)",
				weeks, chargedWeekDays),
		})
	}
	if singleDays > 0 {
		lines = append(lines, Line{
			Period:     "day",
			Units:      singleDays,
			UnitAmount: dayRate,
			Subtotal:   dayRate.Mul(decimal.NewFromInt(int64(singleDays))),
		})
	}
	return lines
}

func quoteFromLines(lines []Line) Quote {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return Quote{Total: total, Lines: lines}
}
