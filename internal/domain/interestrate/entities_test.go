package interestrate

import (
	"errors"
	"testing"

	"loanflow-backend/internal/domain/errs"

	"github.com/shopspring/decimal"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		months int
		rate   string
		fields int
	}{
		{12, "27", 0},
		{1, "0.5", 0},
		{120, "100", 0},
		{0, "10", 1},
		{121, "10", 1},
		{12, "0", 1},
		{12, "100.01", 1},
		{-1, "-3", 2},
	}
	for _, tc := range tests {
		err := Validate(tc.months, decimal.RequireFromString(tc.rate))
		if tc.fields == 0 {
			if err != nil {
				t.Fatalf("Validate(%d,%s) = %v", tc.months, tc.rate, err)
			}
			continue
		}
		var ve *errs.ValidationError
		if !errors.As(err, &ve) || len(ve.Fields) != tc.fields {
			t.Fatalf("Validate(%d,%s) = %v, want %d field errors", tc.months, tc.rate, err, tc.fields)
		}
	}
}

func TestErrNoActiveRateIsValidation(t *testing.T) {
	if !errors.Is(ErrNoActiveRate, errs.ErrValidation) {
		t.Fatalf("ErrNoActiveRate should be a validation error")
	}
}
