package document

import (
	"fmt"
	"strings"
	"time"

	"loanflow-backend/internal/domain/errs"

	"gorm.io/gorm"
)

type Type string

const (
	TypeIDCard          Type = "ID_CARD"
	TypeProofOfFunds    Type = "PROOF_OF_FUNDS"
	TypeBankStatement   Type = "BANK_STATEMENT"
	TypePassport        Type = "PASSPORT"
	TypeUtilityBill     Type = "UTILITY_BILL"
	TypeEmploymentProof Type = "EMPLOYMENT_LETTER"
	TypeOther           Type = "OTHER"
)

var Types = []Type{
	TypeIDCard, TypeProofOfFunds, TypeBankStatement, TypePassport,
	TypeUtilityBill, TypeEmploymentProof, TypeOther,
}

// RequiredForSubmission are the documents every submission carries. Each
// may exist at most once per application.
var RequiredForSubmission = []Type{TypeIDCard, TypeProofOfFunds}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrNotFound    = errs.New(errs.ErrNotFound, "document not found")
	ErrUnknownType = errs.New(errs.ErrValidation, "unknown document type")
	ErrDuplicate   = errs.New(errs.ErrConflict, "a document of this type already exists for the application")
)

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Unique reports whether at most one document of t may exist per application.
func (t Type) Unique() bool {
	for _, v := range RequiredForSubmission {
		if t == v {
			return true
		}
	}
	return false
}

func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrUnknownType
	}
	return t, nil
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", errs.Invalid("status", "must be one of PENDING, APPROVED, REJECTED")
}

// CheckReview allows only PENDING -> APPROVED | REJECTED.
func CheckReview(from, to Status) error {
	if from == StatusPending && (to == StatusApproved || to == StatusRejected) {
		return nil
	}
	return errs.New(errs.ErrInvalidTransition, fmt.Sprintf("document cannot move from %s to %s", from, to))
}

// Table: documents
type Document struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DocumentID    string         `gorm:"column:document_id;type:char(32);not null;uniqueIndex" json:"document_id"`
	ApplicationID string         `gorm:"column:application_id;type:char(32);not null;index" json:"application_id"`
	Type          Type           `gorm:"column:type;size:40;not null" json:"type"`
	FileName      string         `gorm:"column:file_name;size:255" json:"file_name"`
	ContentType   string         `gorm:"column:content_type;size:100" json:"content_type"`
	Size          int64          `gorm:"column:size" json:"size"`
	StorageKey    string         `gorm:"column:storage_key;size:255;not null" json:"-"`
	FilePath      string         `gorm:"column:file_path;type:text;not null" json:"file_path"`
	Status        Status         `gorm:"column:status;size:20;not null;default:'PENDING'" json:"status"`
	UploadedByID  string         `gorm:"column:uploaded_by_id;type:char(32);not null" json:"uploaded_by_id"`
	ReviewedByID  *string        `gorm:"column:reviewed_by_id;type:char(32)" json:"reviewed_by_id,omitempty"`
	ReviewedAt    *time.Time     `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Document) TableName() string { return "documents" }
