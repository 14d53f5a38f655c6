package review

import (
	appDomain "loanflow-backend/internal/domain/application"
	reviewDomain "loanflow-backend/internal/domain/review"
)

type RecordInput struct {
	ApplicationID  string
	Status         string
	Comments       string
	Recommendation string
}

type RecordResult struct {
	Review            reviewDomain.Review `json:"review"`
	ApplicationStatus appDomain.Status    `json:"application_status"`
	Version           uint64              `json:"version"`
}
