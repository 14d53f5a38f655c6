package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"loanflow-backend/internal/adapter/blobstore"
	"loanflow-backend/internal/adapter/repository/gormrepo"
	appDomain "loanflow-backend/internal/domain/application"
	docDomain "loanflow-backend/internal/domain/document"
	"loanflow-backend/internal/domain/errs"
	reviewDomain "loanflow-backend/internal/domain/review"
	userDomain "loanflow-backend/internal/domain/user"
	loanUC "loanflow-backend/internal/usecase/loan"
	reviewUC "loanflow-backend/internal/usecase/review"

	"github.com/spf13/afero"
)

type failingStore struct {
	docDomain.Store
	failAfter int
	puts      int
}

func (s *failingStore) Put(ctx context.Context, applicationID, ext string, body io.Reader) (docDomain.Object, error) {
	s.puts++
	if s.puts > s.failAfter {
		return docDomain.Object{}, errors.New("disk full")
	}
	return s.Store.Put(ctx, applicationID, ext, body)
}

func TestSubmit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.uc.Submit(ctx, e.applicant, validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.DocumentsUploaded != 2 {
		t.Fatalf("DocumentsUploaded=%d want 2", res.DocumentsUploaded)
	}

	a, err := e.repos.Applications.GetByApplicationID(ctx, res.ApplicationID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Status != appDomain.StatusPending || a.Version != 1 {
		t.Fatalf("status=%s version=%d", a.Status, a.Version)
	}
	if a.InterestRate.String() != "27" {
		t.Fatalf("rate not copied from active rate: %s", a.InterestRate)
	}
	if !a.AssignedTo(e.officer.UserID) {
		t.Fatalf("expected officer assignment, got %v", a.AssignedOfficerID)
	}

	docs, err := e.repos.Documents.ListByApplicationID(ctx, res.ApplicationID)
	if err != nil || len(docs) != 2 {
		t.Fatalf("docs=%d err=%v", len(docs), err)
	}
	for _, d := range docs {
		if d.StorageKey == "" || d.FilePath == "" || d.Status != docDomain.StatusPending {
			t.Fatalf("bad document row: %+v", d)
		}
	}

	if len(e.rec.audits) != 1 || len(e.rec.notes) != 2 {
		t.Fatalf("audits=%d notes=%d want 1 and 2", len(e.rec.audits), len(e.rec.notes))
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*SubmitInput)
		field string
	}{
		{"missing proof of funds", func(in *SubmitInput) { in.Documents = in.Documents[:1] }, "documents"},
		{"duplicate id card", func(in *SubmitInput) { in.Documents = append(in.Documents, in.Documents[0]) }, "documents"},
		{"unsupported content", func(in *SubmitInput) { in.Documents[1].Content = []byte("plain text") }, "documents.PROOF_OF_FUNDS"},
		{"zero amount", func(in *SubmitInput) { in.Amount = in.Amount.Sub(in.Amount) }, "amount"},
		{"duration out of range", func(in *SubmitInput) { in.Duration = 121 }, "duration"},
		{"short bvn", func(in *SubmitInput) { s := "123"; in.BVN = &s }, "bvn"},
		{"missing bank name", func(in *SubmitInput) { in.BankName = " " }, "bank_name"},
		{"no active rate for duration", func(in *SubmitInput) { in.Duration = 6 }, "duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			in := validInput()
			tc.mut(&in)
			_, err := e.uc.Submit(context.Background(), e.applicant, in)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			found := false
			for _, f := range ve.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("no error on %s: %v", tc.field, ve.Fields)
			}
			if n := e.count(t, &appDomain.Application{}); n != 0 {
				t.Fatalf("applications=%d want 0", n)
			}
		})
	}
}

func TestSubmitRequiresApplicant(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Submit(context.Background(), e.officer, validInput())
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
	_, err = e.uc.Submit(context.Background(), userDomain.Principal{}, validInput())
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestSubmitRollsBackOnStoreFailure(t *testing.T) {
	e := newEnv(t)
	e.uc.store = &failingStore{Store: blobstore.New(afero.NewMemMapFs(), "http://test"), failAfter: 1}

	_, err := e.uc.Submit(context.Background(), e.applicant, validInput())
	if !errors.Is(err, errs.ErrUpstream) {
		t.Fatalf("want upstream error, got %v", err)
	}
	if n := e.count(t, &appDomain.Application{}); n != 0 {
		t.Fatalf("applications=%d want 0", n)
	}
	if n := e.count(t, &docDomain.Document{}); n != 0 {
		t.Fatalf("documents=%d want 0", n)
	}
	if len(e.rec.audits) != 0 {
		t.Fatalf("no audit expected on a rolled back submission")
	}
}

func TestSubmitWithoutOfficers(t *testing.T) {
	e := newEnv(t)
	if err := e.db.Model(&userDomain.User{}).Where("role = ?", userDomain.RoleLoanOfficer).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	res, err := e.uc.Submit(context.Background(), e.applicant, validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	a, _ := e.repos.Applications.GetByApplicationID(context.Background(), res.ApplicationID)
	if a.AssignedOfficerID != nil {
		t.Fatalf("expected unassigned application")
	}
}

func TestGetVisibilityAndMasking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	appID := e.submitAt(t, appDomain.StatusPending)
	stranger := e.addUser(t, userDomain.RoleApplicant)
	otherOfficer := e.addUser(t, userDomain.RoleLoanOfficer)

	if _, err := e.uc.Get(ctx, stranger, appID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("stranger: want forbidden, got %v", err)
	}
	if _, err := e.uc.Get(ctx, otherOfficer, appID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("unassigned officer: want forbidden, got %v", err)
	}
	if _, err := e.uc.Get(ctx, e.admin, "ffffffffffffffffffffffffffffffff"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing: want not found, got %v", err)
	}

	own, err := e.uc.Get(ctx, e.applicant, appID)
	if err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if own.BVN == nil || *own.BVN != "22212345678" {
		t.Fatalf("owner should see full bvn, got %v", own.BVN)
	}
	if len(own.Documents) != 2 || own.Applicant == nil {
		t.Fatalf("detail incomplete: docs=%d applicant=%v", len(own.Documents), own.Applicant)
	}

	staff, err := e.uc.Get(ctx, e.officer, appID)
	if err != nil {
		t.Fatalf("officer Get: %v", err)
	}
	if staff.BVN == nil || *staff.BVN != "*******5678" {
		t.Fatalf("officer should see masked bvn, got %v", staff.BVN)
	}
}

func TestList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.submitAt(t, appDomain.StatusPending)
	e.submitAt(t, appDomain.StatusUnderReview)
	e.submitAt(t, appDomain.StatusApproved)

	other := e.addUser(t, userDomain.RoleApplicant)

	cases := []struct {
		name  string
		p     userDomain.Principal
		in    ListInput
		total int64
	}{
		{"admin sees all", e.admin, ListInput{}, 3},
		{"officer sees assigned", e.officer, ListInput{}, 3},
		{"approver filters by status", e.approver, ListInput{Status: "under_review"}, 1},
		{"owner", e.applicant, ListInput{Limit: 2}, 3},
		{"other applicant", other, ListInput{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.uc.List(ctx, tc.p, tc.in)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if res.Pagination.Total != tc.total {
				t.Fatalf("total=%d want %d", res.Pagination.Total, tc.total)
			}
		})
	}

	res, _ := e.uc.List(ctx, e.applicant, ListInput{Limit: 2})
	if len(res.Applications) != 2 || res.Pagination.TotalPages != 2 {
		t.Fatalf("page size=%d pages=%d", len(res.Applications), res.Pagination.TotalPages)
	}
	if _, err := e.uc.List(ctx, e.admin, ListInput{Status: "nope"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad status filter: want validation, got %v", err)
	}
}

func TestTransition(t *testing.T) {
	cases := []struct {
		name  string
		from  appDomain.Status
		actor func(e *env) userDomain.Principal
		to    appDomain.Status
		want  error
	}{
		{"officer starts review", appDomain.StatusPending, func(e *env) userDomain.Principal { return e.officer }, appDomain.StatusUnderReview, nil},
		{"officer cannot approve", appDomain.StatusUnderReview, func(e *env) userDomain.Principal { return e.officer }, appDomain.StatusApproved, errs.ErrForbidden},
		{"approver approves", appDomain.StatusUnderReview, func(e *env) userDomain.Principal { return e.approver }, appDomain.StatusApproved, nil},
		{"applicant answers info request", appDomain.StatusAdditionalInfoRequested, func(e *env) userDomain.Principal { return e.applicant }, appDomain.StatusUnderReview, nil},
		{"applicant cannot start review", appDomain.StatusPending, func(e *env) userDomain.Principal { return e.applicant }, appDomain.StatusUnderReview, errs.ErrForbidden},
		{"rejected is terminal", appDomain.StatusRejected, func(e *env) userDomain.Principal { return e.admin }, appDomain.StatusUnderReview, errs.ErrInvalidTransition},
		{"skipping review", appDomain.StatusPending, func(e *env) userDomain.Principal { return e.admin }, appDomain.StatusApproved, errs.ErrInvalidTransition},
		{"disbursement is its own action", appDomain.StatusApproved, func(e *env) userDomain.Principal { return e.admin }, appDomain.StatusDisbursed, errs.ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			appID := e.submitAt(t, tc.from)
			e.rec.audits = nil

			dto, err := e.uc.Transition(context.Background(), tc.actor(e), TransitionInput{ApplicationID: appID, To: tc.to, Note: "n"})
			if tc.want != nil {
				if !errors.Is(err, tc.want) {
					t.Fatalf("want %v, got %v", tc.want, err)
				}
				a, _ := e.repos.Applications.GetByApplicationID(context.Background(), appID)
				if a.Status != tc.from {
					t.Fatalf("status changed to %s on a rejected transition", a.Status)
				}
				if len(e.rec.audits) != 0 {
					t.Fatalf("rejected transition must not be audited")
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition: %v", err)
			}
			if dto.Status != tc.to {
				t.Fatalf("status=%s want %s", dto.Status, tc.to)
			}
			if len(e.rec.audits) != 1 || e.rec.audits[0].FromStatus != string(tc.from) {
				t.Fatalf("audit=%+v", e.rec.audits)
			}
		})
	}
}

func TestTransitionInfoRequestFlags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	appID := e.submitAt(t, appDomain.StatusUnderReview)

	dto, err := e.uc.Transition(ctx, e.officer, TransitionInput{ApplicationID: appID, To: appDomain.StatusAdditionalInfoRequested, Note: "need payslip"})
	if err != nil {
		t.Fatalf("request info: %v", err)
	}
	if !dto.AdditionalInfoRequested || dto.AdditionalInfoNote != "need payslip" {
		t.Fatalf("flags not raised: %+v", dto)
	}

	dto, err = e.uc.Transition(ctx, e.applicant, TransitionInput{ApplicationID: appID, To: appDomain.StatusUnderReview})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if dto.AdditionalInfoRequested || dto.AdditionalInfoProvidedAt == nil {
		t.Fatalf("flags not cleared: %+v", dto)
	}
	a, _ := e.repos.Applications.GetByApplicationID(ctx, appID)
	if a.AdditionalInfoRequested || a.AdditionalInfoProvidedAt == nil || a.Version != 4 {
		t.Fatalf("stored flags wrong: requested=%v provided=%v version=%d", a.AdditionalInfoRequested, a.AdditionalInfoProvidedAt, a.Version)
	}
}

func TestTransitionConcurrent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	appID := e.submitAt(t, appDomain.StatusUnderReview)
	expected := appDomain.StatusUnderReview

	targets := []appDomain.Status{appDomain.StatusApproved, appDomain.StatusRejected}
	results := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to appDomain.Status) {
			defer wg.Done()
			_, results[i] = e.uc.Transition(ctx, e.approver, TransitionInput{ApplicationID: appID, To: to, Expected: &expected})
		}(i, to)
	}
	wg.Wait()

	var wins int
	winner := appDomain.Status("")
	for i, err := range results {
		switch {
		case err == nil:
			wins++
			winner = targets[i]
		case !errors.Is(err, errs.ErrConcurrentModification):
			t.Fatalf("loser should see a concurrent modification, got %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins=%d want exactly 1", wins)
	}
	a, _ := e.repos.Applications.GetByApplicationID(ctx, appID)
	if a.Status != winner || a.Version != 3 {
		t.Fatalf("stored status=%s version=%d want %s and 3", a.Status, a.Version, winner)
	}
}

func TestTransitionStaleExpected(t *testing.T) {
	e := newEnv(t)
	appID := e.submitAt(t, appDomain.StatusUnderReview)
	stale := appDomain.StatusPending
	_, err := e.uc.Transition(context.Background(), e.admin, TransitionInput{ApplicationID: appID, To: appDomain.StatusApproved, Expected: &stale})
	if !errors.Is(err, errs.ErrConcurrentModification) {
		t.Fatalf("want concurrent modification, got %v", err)
	}
}

func TestTransitionFilesDecisionReview(t *testing.T) {
	e := newEnv(t)
	e.uc.now = time.Now
	ctx := context.Background()
	tx := gormrepo.NewGormUoW(e.db)
	appID := e.submitAt(t, appDomain.StatusUnderReview)

	if _, err := reviewUC.NewUsecase(tx, e.rec, nil).Record(ctx, e.approver, reviewUC.RecordInput{ApplicationID: appID, Status: "REQUEST_INFO", Comments: "payslip"}); err != nil {
		t.Fatalf("request info: %v", err)
	}
	if _, err := e.uc.Transition(ctx, e.applicant, TransitionInput{ApplicationID: appID, To: appDomain.StatusUnderReview}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := e.uc.Transition(ctx, e.approver, TransitionInput{ApplicationID: appID, To: appDomain.StatusApproved, Note: "ok now"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	detail, err := e.uc.Get(ctx, e.admin, appID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	latest := detail.Reviews[0]
	if latest.Status != reviewDomain.DecisionApproved || latest.Tier != reviewDomain.TierApprover || latest.ReviewerID != e.approver.UserID || latest.Comments != "ok now" {
		t.Fatalf("latest review = %+v", latest)
	}
	if !detail.Summary.EligibleForDisbursement {
		t.Fatalf("approved application not eligible: %+v", detail.Summary)
	}

	l, err := loanUC.NewUsecase(e.repos, tx, e.rec, nil).Disburse(ctx, e.approver, loanUC.DisburseInput{ApplicationID: appID})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}
	if l.ApplicationID != appID {
		t.Fatalf("loan for %s, want %s", l.ApplicationID, appID)
	}
}

func TestTransitionWithoutDecisionFilesNoReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	appID := e.submitAt(t, appDomain.StatusPending)
	if _, err := e.uc.Transition(ctx, e.officer, TransitionInput{ApplicationID: appID, To: appDomain.StatusUnderReview}); err != nil {
		t.Fatalf("start review: %v", err)
	}
	rs, err := e.repos.Reviews.ListByApplicationID(ctx, appID)
	if err != nil || len(rs) != 0 {
		t.Fatalf("reviews=%d err=%v, want none", len(rs), err)
	}
}
