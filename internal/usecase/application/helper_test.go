package application

import (
	"context"
	"testing"
	"time"

	"loanflow-backend/internal/adapter/blobstore"
	"loanflow-backend/internal/adapter/repository/gormrepo"
	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	docDomain "loanflow-backend/internal/domain/document"
	rateDomain "loanflow-backend/internal/domain/interestrate"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/testutil/dbtest"
	"loanflow-backend/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
)

type recorder struct {
	notes  []activity.Notification
	audits []activity.AuditLog
}

func (r *recorder) Notify(_ context.Context, n activity.Notification) { r.notes = append(r.notes, n) }
func (r *recorder) Audit(_ context.Context, a activity.AuditLog)      { r.audits = append(r.audits, a) }

type env struct {
	db        *gorm.DB
	repos     uow.Repos
	uc        *Usecase
	rec       *recorder
	applicant userDomain.Principal
	officer   userDomain.Principal
	approver  userDomain.Principal
	admin     userDomain.Principal
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	repos := gormrepo.Repos(db)
	rec := &recorder{}
	uc := NewUsecase(repos, gormrepo.NewGormUoW(db), blobstore.New(afero.NewMemMapFs(), "http://test"), rec, nil, 1<<20)
	uc.pick = func(int) int { return 0 }
	uc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	e := &env{db: db, repos: repos, uc: uc, rec: rec}
	e.applicant = e.addUser(t, userDomain.RoleApplicant)
	e.officer = e.addUser(t, userDomain.RoleLoanOfficer)
	e.approver = e.addUser(t, userDomain.RoleApprover)
	e.admin = e.addUser(t, userDomain.RoleSuperAdmin)

	rate := &rateDomain.InterestRate{RateID: id.NewID32(), Months: 12, Rate: decimal.NewFromInt(27), IsActive: true, AdminID: e.admin.UserID}
	if err := repos.InterestRates.Create(context.Background(), rate); err != nil {
		t.Fatalf("seed rate: %v", err)
	}
	return e
}

func (e *env) addUser(t *testing.T, role userDomain.Role) userDomain.Principal {
	t.Helper()
	uid := id.NewID32()
	u := &userDomain.User{UserID: uid, Email: uid + "@example.com", PasswordHash: "x", FirstName: "F", LastName: "L", Role: role, IsActive: true}
	if err := e.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.Principal()
}

func validInput() SubmitInput {
	bvn := "22212345678"
	return SubmitInput{
		Amount:           decimal.NewFromInt(100000),
		Duration:         12,
		MonthlyIncome:    decimal.NewFromInt(250000),
		EmploymentStatus: "EMPLOYED",
		FirstName:        "Ada",
		LastName:         "Obi",
		Phone:            "08030000000",
		AccountNumber:    "0123456789",
		BankName:         "First Bank",
		BVN:              &bvn,
		Documents: []DocumentUpload{
			{Type: docDomain.TypeIDCard, FileName: "id.png", Content: pngBytes},
			{Type: docDomain.TypeProofOfFunds, FileName: "funds.pdf", Content: pdfBytes},
		},
	}
}

// submitAt creates an application and walks it to status through the
// transition path.
func (e *env) submitAt(t *testing.T, status appDomain.Status) string {
	t.Helper()
	ctx := context.Background()
	res, err := e.uc.Submit(ctx, e.applicant, validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	path := map[appDomain.Status][]appDomain.Status{
		appDomain.StatusPending:                 nil,
		appDomain.StatusUnderReview:             {appDomain.StatusUnderReview},
		appDomain.StatusAdditionalInfoRequested: {appDomain.StatusUnderReview, appDomain.StatusAdditionalInfoRequested},
		appDomain.StatusApproved:                {appDomain.StatusUnderReview, appDomain.StatusApproved},
		appDomain.StatusRejected:                {appDomain.StatusUnderReview, appDomain.StatusRejected},
	}[status]
	for _, to := range path {
		if _, err := e.uc.Transition(ctx, e.admin, TransitionInput{ApplicationID: res.ApplicationID, To: to}); err != nil {
			t.Fatalf("walk to %s: %v", to, err)
		}
	}
	return res.ApplicationID
}

func (e *env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Unscoped().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
