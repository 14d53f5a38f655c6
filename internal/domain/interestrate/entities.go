package interestrate

import (
	"time"

	"loanflow-backend/internal/domain/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinMonths = 1
	MaxMonths = 120
)

var (
	ErrNotFound     = errs.New(errs.ErrNotFound, "interest rate not found")
	ErrNoActiveRate = errs.Invalid("duration", "no active interest rate for this duration")
	ErrActiveExists = errs.New(errs.ErrConflict, "another active rate for this duration was created concurrently")
)

var maxRate = decimal.NewFromInt(100)

// Table: interest_rates. At most one active row per months value; older
// rows stay as history with IsActive=false. ActiveMonths mirrors Months on
// the active row and is NULL otherwise, so its unique index enforces that.
type InterestRate struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RateID       string          `gorm:"column:rate_id;type:char(32);not null;uniqueIndex" json:"rate_id"`
	Months       int             `gorm:"column:months;not null;index" json:"months"`
	Rate         decimal.Decimal `gorm:"column:rate;type:decimal(6,2);not null" json:"rate"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	ActiveMonths *int            `gorm:"column:active_months;uniqueIndex" json:"-"`
	AdminID      string          `gorm:"column:admin_id;type:char(32);not null" json:"admin_id"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (InterestRate) TableName() string { return "interest_rates" }

func (r *InterestRate) BeforeCreate(*gorm.DB) error {
	r.ActiveMonths = nil
	if r.IsActive {
		m := r.Months
		r.ActiveMonths = &m
	}
	return nil
}

// Validate checks the bounds accepted for a new rate.
func Validate(months int, rate decimal.Decimal) error {
	v := &errs.ValidationError{}
	if months < MinMonths || months > MaxMonths {
		v.Add("months", "must be between 1 and 120")
	}
	if !rate.IsPositive() || rate.GreaterThan(maxRate) {
		v.Add("rate", "must be greater than 0 and at most 100")
	}
	return v.OrNil()
}
