// Package interest computes flat-rate simple-interest repayment schedules.
//
// The annual rate is charged once over the whole term regardless of its
// length: 100,000 at 27% over 12 months repays 127,000 in total, i.e.
// 10,583.33 a month. Values are kept at full precision; round with Rounded
// only when presenting or persisting them.
package interest

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places money is displayed with.
const CurrencyPlaces = 2

var (
	ErrInvalidPrincipal = errors.New("interest: principal must be positive")
	ErrInvalidRate      = errors.New("interest: rate must not be negative")
	ErrInvalidMonths    = errors.New("interest: months must be positive")
)

var hundred = decimal.NewFromInt(100)

type Schedule struct {
	Principal      decimal.Decimal
	RatePercent    decimal.Decimal
	Months         int
	TotalInterest  decimal.Decimal
	TotalRepayment decimal.Decimal
	MonthlyPayment decimal.Decimal
}

// ComputeSchedule returns the flat-rate schedule for principal at
// annualRatePercent over months.
func ComputeSchedule(principal, annualRatePercent decimal.Decimal, months int) (Schedule, error) {
	if !principal.IsPositive() {
		return Schedule{}, ErrInvalidPrincipal
	}
	if annualRatePercent.IsNegative() {
		return Schedule{}, ErrInvalidRate
	}
	if months <= 0 {
		return Schedule{}, ErrInvalidMonths
	}

	totalInterest := principal.Mul(annualRatePercent).Div(hundred)
	total := principal.Add(totalInterest)

	return Schedule{
		Principal:      principal,
		RatePercent:    annualRatePercent,
		Months:         months,
		TotalInterest:  totalInterest,
		TotalRepayment: total,
		MonthlyPayment: total.Div(decimal.NewFromInt(int64(months))),
	}, nil
}

// Rounded returns a copy with every money field rounded to CurrencyPlaces.
func (s Schedule) Rounded() Schedule {
	s.Principal = s.Principal.Round(CurrencyPlaces)
	s.TotalInterest = s.TotalInterest.Round(CurrencyPlaces)
	s.TotalRepayment = s.TotalRepayment.Round(CurrencyPlaces)
	s.MonthlyPayment = s.MonthlyPayment.Round(CurrencyPlaces)
	return s
}
