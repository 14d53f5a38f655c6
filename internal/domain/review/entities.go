package review

import (
	"strings"
	"time"

	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/internal/domain/user"

	"gorm.io/gorm"
)

type Decision string

const (
	DecisionApproved    Decision = "APPROVED"
	DecisionRejected    Decision = "REJECTED"
	DecisionRequestInfo Decision = "REQUEST_INFO"
)

// Tier separates advisory officer reviews from binding approver decisions.
type Tier string

const (
	TierOfficer  Tier = "OFFICER"
	TierApprover Tier = "APPROVER"
)

var (
	ErrUnknownDecision = errs.New(errs.ErrValidation, "unknown review status")
	ErrNotReviewable   = errs.New(errs.ErrInvalidTransition, "application is not open for review")
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToUpper(strings.TrimSpace(s))); d {
	case DecisionApproved, DecisionRejected, DecisionRequestInfo:
		return d, nil
	case "REQUEST_MORE_INFO":
		return DecisionRequestInfo, nil
	}
	return "", ErrUnknownDecision
}

// Table: loan_reviews. Rows are append-only.
type Review struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ReviewID       string         `gorm:"column:review_id;type:char(32);not null;uniqueIndex" json:"review_id"`
	ApplicationID  string         `gorm:"column:application_id;type:char(32);not null;index" json:"application_id"`
	ReviewerID     string         `gorm:"column:reviewer_id;type:char(32);not null;index" json:"reviewer_id"`
	ReviewerRole   user.Role      `gorm:"column:reviewer_role;size:20;not null" json:"reviewer_role"`
	Tier           Tier           `gorm:"column:tier;size:10;not null" json:"tier"`
	Status         Decision       `gorm:"column:status;size:20;not null" json:"status"`
	Comments       string         `gorm:"column:comments;type:text" json:"comments"`
	Recommendation string         `gorm:"column:recommendation;type:text" json:"recommendation"`
	ReviewedAt     time.Time      `gorm:"column:reviewed_at;not null;index" json:"reviewed_at"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Review) TableName() string { return "loan_reviews" }
