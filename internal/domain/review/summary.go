package review

import (
	"sort"

	"loanflow-backend/internal/domain/application"
)

type Summary struct {
	OfficerRecommendation   *Decision          `json:"officer_recommendation"`
	ApproverDecision        *Decision          `json:"approver_decision"`
	RecommendedStatus       application.Status `json:"recommended_status"`
	EligibleForDisbursement bool               `json:"eligible_for_disbursement"`
}

// SortNewestFirst orders reviews by ReviewedAt descending.
func SortNewestFirst(rs []Review) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].ReviewedAt.After(rs[j].ReviewedAt) })
}

// Summarize folds the review history of an application in status into the
// latest decision per tier. The approver's decision outranks the officer's
// recommendation; with neither the recommended status is the current one.
// An approved application is eligible for disbursement unless its latest
// binding review says otherwise.
func Summarize(rs []Review, status application.Status) Summary {
	var officer, approver *Review
	for i := range rs {
		r := &rs[i]
		switch r.Tier {
		case TierOfficer:
			if officer == nil || r.ReviewedAt.After(officer.ReviewedAt) {
				officer = r
			}
		case TierApprover:
			if approver == nil || r.ReviewedAt.After(approver.ReviewedAt) {
				approver = r
			}
		}
	}

	s := Summary{RecommendedStatus: status}
	if officer != nil {
		d := officer.Status
		s.OfficerRecommendation = &d
		s.RecommendedStatus = StatusFor(d)
	}
	if approver != nil {
		d := approver.Status
		s.ApproverDecision = &d
		s.RecommendedStatus = StatusFor(d)
	}
	s.EligibleForDisbursement = status == application.StatusApproved &&
		(s.ApproverDecision == nil || *s.ApproverDecision == DecisionApproved)
	return s
}
