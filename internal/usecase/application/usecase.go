package application

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	docDomain "loanflow-backend/internal/domain/document"
	"loanflow-backend/internal/domain/errs"
	rateDomain "loanflow-backend/internal/domain/interestrate"
	loanDomain "loanflow-backend/internal/domain/loan"
	reviewDomain "loanflow-backend/internal/domain/review"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/infrastructure/metrics"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"

	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var reIdentityNumber = regexp.MustCompile(`^[0-9]{11}$`)

var ErrDisburseSeparately = errs.New(errs.ErrInvalidTransition, "disbursement goes through the disburse action")

type Usecase struct {
	repos          uow.Repos
	uow            uow.UnitOfWork
	store          docDomain.Store
	emitter        activity.Emitter
	metrics        *metrics.Metrics
	maxUploadBytes int64

	now  func() time.Time
	pick func(n int) int
}

// NewUsecase: repos serve reads and the submission writes, tx serves status
// changes. m may be nil.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, store docDomain.Store, emitter activity.Emitter, m *metrics.Metrics, maxUploadBytes int64) *Usecase {
	return &Usecase{
		repos:          repos,
		uow:            tx,
		store:          store,
		emitter:        emitter,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
		pick:           rand.Intn,
	}
}

type sniffed struct {
	DocumentUpload
	contentType string
	ext         string
}

// Submit creates a PENDING application together with its ID_CARD and
// PROOF_OF_FUNDS documents. Nothing is written unless the input is valid;
// if storing a document fails after the application row exists, the row and
// any document rows are removed again.
func (u *Usecase) Submit(ctx context.Context, p userDomain.Principal, in SubmitInput) (*SubmitResult, error) {
	if err := p.Require(userDomain.RoleApplicant); err != nil {
		return nil, err
	}
	uploads, err := u.validateSubmission(in)
	if err != nil {
		u.metrics.Submission("invalid")
		return nil, err
	}

	rate, err := u.repos.InterestRates.GetActive(ctx, in.Duration)
	if errors.Is(err, rateDomain.ErrNotFound) {
		u.metrics.Submission("invalid")
		return nil, rateDomain.ErrNoActiveRate
	}
	if err != nil {
		return nil, err
	}

	officerID, err := u.pickOfficer(ctx)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	a := &appDomain.Application{
		ApplicationID:     id.NewID32(),
		ApplicantID:       p.UserID,
		AssignedOfficerID: officerID,
		Amount:            in.Amount,
		Duration:          in.Duration,
		InterestRate:      rate.Rate,
		MonthlyIncome:     in.MonthlyIncome,
		EmploymentStatus:  strings.TrimSpace(in.EmploymentStatus),
		Purpose:           strings.TrimSpace(in.Purpose),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Phone:             strings.TrimSpace(in.Phone),
		Address:           strings.TrimSpace(in.Address),
		AccountNumber:     strings.TrimSpace(in.AccountNumber),
		BankName:          strings.TrimSpace(in.BankName),
		BVN:               in.BVN,
		NIN:               in.NIN,
		Status:            appDomain.StatusPending,
		Version:           1,
		SubmittedAt:       now,
		StatusUpdatedAt:   now,
	}
	if err := u.repos.Applications.Create(ctx, a); err != nil {
		return nil, err
	}

	n, err := u.storeDocuments(ctx, p, a, uploads)
	if err != nil {
		u.compensate(ctx, a.ApplicationID)
		u.metrics.Submission("rolled_back")
		return nil, errs.Upstream("document upload failed; application was not created", err)
	}

	u.metrics.Submission("accepted")
	notification.Submitted(ctx, u.emitter, p, a)
	return &SubmitResult{ApplicationID: a.ApplicationID, DocumentsUploaded: n}, nil
}

func (u *Usecase) validateSubmission(in SubmitInput) ([]sniffed, error) {
	v := &errs.ValidationError{}
	if !in.Amount.IsPositive() {
		v.Add("amount", "must be greater than 0")
	}
	if in.Duration < rateDomain.MinMonths || in.Duration > rateDomain.MaxMonths {
		v.Add("duration", "must be between 1 and 120 months")
	}
	if !in.MonthlyIncome.IsPositive() {
		v.Add("monthly_income", "must be greater than 0")
	}
	required := []struct{ field, value string }{
		{"employment_status", in.EmploymentStatus},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
		{"account_number", in.AccountNumber},
		{"bank_name", in.BankName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			v.Add(r.field, "is required")
		}
	}
	if in.BVN != nil && !reIdentityNumber.MatchString(*in.BVN) {
		v.Add("bvn", "must be 11 digits")
	}
	if in.NIN != nil && !reIdentityNumber.MatchString(*in.NIN) {
		v.Add("nin", "must be 11 digits")
	}

	counts := map[docDomain.Type]int{}
	out := make([]sniffed, 0, len(in.Documents))
	for _, d := range in.Documents {
		counts[d.Type]++
		if !d.Type.Unique() {
			v.Add("documents", "only ID_CARD and PROOF_OF_FUNDS are accepted on submission")
			continue
		}
		ct, ext, err := docDomain.Sniff("documents."+string(d.Type), d.Content, u.maxUploadBytes)
		if err != nil {
			var ve *errs.ValidationError
			if errors.As(err, &ve) {
				v.Fields = append(v.Fields, ve.Fields...)
			}
			continue
		}
		out = append(out, sniffed{DocumentUpload: d, contentType: ct, ext: ext})
	}
	for _, t := range docDomain.RequiredForSubmission {
		if counts[t] != 1 {
			v.Add("documents", "exactly one "+string(t)+" document is required")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// pickOfficer chooses uniformly among active loan officers. No officer is
// not an error: the application stays unassigned.
func (u *Usecase) pickOfficer(ctx context.Context) (*string, error) {
	officers, err := u.repos.Users.List(ctx, userDomain.Filter{Role: userDomain.RoleLoanOfficer, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	if len(officers) == 0 {
		return nil, nil
	}
	chosen := officers[u.pick(len(officers))].UserID
	return &chosen, nil
}

func (u *Usecase) storeDocuments(ctx context.Context, p userDomain.Principal, a *appDomain.Application, uploads []sniffed) (int, error) {
	for _, up := range uploads {
		obj, err := u.store.Put(ctx, a.ApplicationID, up.ext, bytes.NewReader(up.Content))
		if err != nil {
			return 0, err
		}
		d := &docDomain.Document{
			DocumentID:    id.NewID32(),
			ApplicationID: a.ApplicationID,
			Type:          up.Type,
			FileName:      up.FileName,
			ContentType:   up.contentType,
			Size:          obj.Size,
			StorageKey:    obj.Key,
			FilePath:      obj.URL,
			Status:        docDomain.StatusPending,
			UploadedByID:  p.UserID,
		}
		if err := u.repos.Documents.Create(ctx, d); err != nil {
			return 0, err
		}
	}
	return len(uploads), nil
}

// compensate removes a half-written submission. Blobs already stored are
// left behind.
func (u *Usecase) compensate(ctx context.Context, applicationID string) {
	ctx = context.WithoutCancel(ctx)
	log := logrus.WithContext(ctx).WithField("application_id", applicationID)
	if err := u.repos.Documents.DeleteByApplicationID(ctx, applicationID); err != nil {
		log.WithError(err).Error("submission rollback: delete documents")
	}
	if err := u.repos.Applications.Delete(ctx, applicationID); err != nil {
		log.WithError(err).Error("submission rollback: delete application")
	}
}

func (u *Usecase) List(ctx context.Context, p userDomain.Principal, in ListInput) (*ListResult, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	f := appDomain.ListFilter{Scope: appDomain.ScopeFor(p), Page: in.Page, Limit: in.Limit}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if in.Status != "" {
		st, err := appDomain.ParseStatus(in.Status)
		if err != nil {
			return nil, errs.Invalid("status", "unknown application status")
		}
		f.Status = st
	}

	items, total, err := u.repos.Applications.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &ListResult{
		Applications: make([]ApplicationDTO, 0, len(items)),
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		},
	}
	for i := range items {
		out.Applications = append(out.Applications, toDTO(&items[i], appDomain.SeesSensitive(p, &items[i])))
	}
	return out, nil
}

// Get returns one application with everything attached to it.
func (u *Usecase) Get(ctx context.Context, p userDomain.Principal, applicationID string) (*DetailDTO, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	a, err := u.repos.Applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !appDomain.CanView(p, a) {
		return nil, appDomain.ErrNotVisible
	}

	out := &DetailDTO{ApplicationDTO: toDTO(a, appDomain.SeesSensitive(p, a))}
	applicant, err := u.repos.Users.GetByUserID(ctx, a.ApplicantID)
	switch {
	case err == nil:
		out.Applicant = toApplicantDTO(applicant)
	case !errors.Is(err, userDomain.ErrNotFound):
		return nil, err
	}
	if out.Documents, err = u.repos.Documents.ListByApplicationID(ctx, a.ApplicationID); err != nil {
		return nil, err
	}
	if out.Reviews, err = u.repos.Reviews.ListByApplicationID(ctx, a.ApplicationID); err != nil {
		return nil, err
	}
	reviewDomain.SortNewestFirst(out.Reviews)
	out.Summary = reviewDomain.Summarize(out.Reviews, a.Status)

	l, err := u.repos.Loans.GetByApplicationID(ctx, a.ApplicationID)
	switch {
	case err == nil:
		out.Loan = l
	case !errors.Is(err, loanDomain.ErrNotFound):
		return nil, err
	}
	return out, nil
}

// Transition moves an application along one edge of the state machine. The
// write is conditional on the status read in the same transaction, so of two
// racing calls only one lands.
func (u *Usecase) Transition(ctx context.Context, p userDomain.Principal, in TransitionInput) (*ApplicationDTO, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	if !in.To.Valid() {
		return nil, errs.Invalid("status", "unknown application status")
	}
	if in.To == appDomain.StatusDisbursed {
		return nil, ErrDisburseSeparately
	}

	var (
		app    *appDomain.Application
		change appDomain.Change
		rv     *reviewDomain.Review
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appDomain.Application) error {
		if !appDomain.CanAct(p, a) {
			return appDomain.ErrNotVisible
		}
		if in.Expected != nil && a.Status != *in.Expected {
			return appDomain.ErrConcurrentModification
		}
		if err := appDomain.Authorize(p.Role, a.Status, in.To); err != nil {
			return err
		}
		change = appDomain.Change{From: a.Status, To: in.To, Note: strings.TrimSpace(in.Note), At: u.now().UTC()}
		var err error
		if rv, err = decisionReview(p, a, change); err != nil {
			return err
		}
		if err := r.Applications.UpdateStatus(ctx, a.ApplicationID, change); err != nil {
			return err
		}
		if rv != nil {
			if err := r.Reviews.Create(ctx, rv); err != nil {
				return err
			}
		}
		a.Apply(change)
		app = a
		return nil
	})
	if err != nil {
		u.metrics.TransitionRejected(errs.KindOf(err))
		return nil, err
	}

	u.metrics.Transition(string(change.From), string(change.To))
	if rv != nil {
		u.metrics.Review(string(rv.Tier), string(rv.Status))
	}
	notification.Transitioned(ctx, u.emitter, p, app, change)
	dto := toDTO(app, appDomain.SeesSensitive(p, app))
	return &dto, nil
}

// decisionReview is the review a direct transition files on the caller's
// behalf, so that the review history always carries the decision behind the
// current status. Transitions that decide nothing file none.
func decisionReview(p userDomain.Principal, a *appDomain.Application, c appDomain.Change) (*reviewDomain.Review, error) {
	d, ok := reviewDomain.DecisionFor(c.To)
	if !ok {
		return nil, nil
	}
	tier, err := reviewDomain.TierFor(p.Role, c.From)
	if err != nil {
		return nil, err
	}
	return &reviewDomain.Review{
		ReviewID:      id.NewID32(),
		ApplicationID: a.ApplicationID,
		ReviewerID:    p.UserID,
		ReviewerRole:  p.Role,
		Tier:          tier,
		Status:        d,
		Comments:      c.Note,
		ReviewedAt:    c.At,
	}, nil
}
