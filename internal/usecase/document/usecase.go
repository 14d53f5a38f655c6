package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	docDomain "loanflow-backend/internal/domain/document"
	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"

	"github.com/sirupsen/logrus"
)

var (
	ErrUploadClosed = errs.New(errs.ErrForbidden, "applicants may add documents only while the application is pending or awaiting information")
	ErrDeleteDenied = errs.New(errs.ErrForbidden, "only pending documents of your own application can be deleted")
)

type Usecase struct {
	repos          uow.Repos
	store          docDomain.Store
	emitter        activity.Emitter
	maxUploadBytes int64
	now            func() time.Time
}

func NewUsecase(repos uow.Repos, store docDomain.Store, emitter activity.Emitter, maxUploadBytes int64) *Usecase {
	return &Usecase{repos: repos, store: store, emitter: emitter, maxUploadBytes: maxUploadBytes, now: time.Now}
}

// Upload stores one more document on an application. The blob is written
// before the row; a failed row insert leaves the blob behind.
func (u *Usecase) Upload(ctx context.Context, p userDomain.Principal, in UploadInput) (*docDomain.Document, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	t, err := docDomain.ParseType(in.Type)
	if err != nil {
		return nil, errs.Invalid("type", "unknown document type")
	}
	a, err := u.repos.Applications.GetByApplicationID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := canUpload(p, a); err != nil {
		return nil, err
	}
	contentType, ext, err := docDomain.Sniff("file", in.Content, u.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	if t.Unique() {
		exists, err := u.repos.Documents.ExistsOfType(ctx, a.ApplicationID, t)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, docDomain.ErrDuplicate
		}
	}

	obj, err := u.store.Put(ctx, a.ApplicationID, ext, bytes.NewReader(in.Content))
	if err != nil {
		return nil, errs.Upstream("document upload failed", err)
	}
	d := &docDomain.Document{
		DocumentID:    id.NewID32(),
		ApplicationID: a.ApplicationID,
		Type:          t,
		FileName:      path.Base(strings.TrimSpace(in.FileName)),
		ContentType:   contentType,
		Size:          obj.Size,
		StorageKey:    obj.Key,
		FilePath:      obj.URL,
		Status:        docDomain.StatusPending,
		UploadedByID:  p.UserID,
	}
	if err := u.repos.Documents.Create(ctx, d); err != nil {
		logrus.WithContext(ctx).WithError(err).WithField("storage_key", obj.Key).Warn("document row not written; blob left in store")
		return nil, err
	}

	notification.Recorded(ctx, u.emitter, p, activity.ActionDocumentUpload, "document", d.DocumentID, string(t))
	return d, nil
}

func canUpload(p userDomain.Principal, a *appDomain.Application) error {
	switch p.Role {
	case userDomain.RoleSuperAdmin:
		return nil
	case userDomain.RoleLoanOfficer:
		if a.AssignedTo(p.UserID) {
			return nil
		}
	case userDomain.RoleApplicant:
		if !a.OwnedBy(p.UserID) {
			break
		}
		if a.Status == appDomain.StatusPending || a.Status == appDomain.StatusAdditionalInfoRequested {
			return nil
		}
		return ErrUploadClosed
	}
	return appDomain.ErrNotVisible
}

// List returns the documents of an application the caller can see.
func (u *Usecase) List(ctx context.Context, p userDomain.Principal, applicationID string) ([]docDomain.Document, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(applicationID) == "" {
		return nil, errs.Invalid("application_id", "is required")
	}
	if _, err := u.visibleApplication(ctx, p, applicationID); err != nil {
		return nil, err
	}
	return u.repos.Documents.ListByApplicationID(ctx, applicationID)
}

// Review moves a PENDING document to APPROVED or REJECTED. Staff only.
func (u *Usecase) Review(ctx context.Context, p userDomain.Principal, in ReviewInput) (*docDomain.Document, error) {
	if err := p.Require(userDomain.RoleLoanOfficer, userDomain.RoleApprover, userDomain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	to, err := docDomain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	d, err := u.repos.Documents.GetByDocumentID(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	a, err := u.repos.Applications.GetByApplicationID(ctx, d.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !appDomain.CanAct(p, a) {
		return nil, appDomain.ErrNotVisible
	}
	if err := docDomain.CheckReview(d.Status, to); err != nil {
		return nil, err
	}

	at := u.now().UTC()
	reviewer := p.UserID
	d.Status = to
	d.ReviewedByID = &reviewer
	d.ReviewedAt = &at
	if err := u.repos.Documents.Save(ctx, d); err != nil {
		return nil, err
	}
	notification.Recorded(ctx, u.emitter, p, activity.ActionDocumentReview, "document", d.DocumentID, string(to))
	return d, nil
}

// Delete removes a document row. Super admins may delete any document;
// applicants only their own while it is still PENDING. The blob is removed
// afterwards and a failure there is only logged.
func (u *Usecase) Delete(ctx context.Context, p userDomain.Principal, documentID string) error {
	if err := p.Require(userDomain.RoleSuperAdmin, userDomain.RoleApplicant); err != nil {
		return err
	}
	d, err := u.repos.Documents.GetByDocumentID(ctx, documentID)
	if err != nil {
		return err
	}
	if p.Role == userDomain.RoleApplicant {
		a, err := u.repos.Applications.GetByApplicationID(ctx, d.ApplicationID)
		if err != nil {
			return err
		}
		if !a.OwnedBy(p.UserID) {
			return appDomain.ErrNotVisible
		}
		if d.Status != docDomain.StatusPending {
			return ErrDeleteDenied
		}
	}

	if err := u.repos.Documents.Delete(ctx, d.DocumentID); err != nil {
		return err
	}
	if err := u.store.Delete(context.WithoutCancel(ctx), d.StorageKey); err != nil {
		logrus.WithContext(ctx).WithError(err).WithField("storage_key", d.StorageKey).Warn("document blob not removed")
	}
	notification.Recorded(ctx, u.emitter, p, activity.ActionDocumentDelete, "document", d.DocumentID, string(d.Type))
	return nil
}

// Open streams a stored blob. key is <application_id>/<name> and the caller
// must be able to see that application.
func (u *Usecase) Open(ctx context.Context, p userDomain.Principal, key string) (io.ReadCloser, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	applicationID, _, ok := strings.Cut(key, "/")
	if !ok {
		return nil, docDomain.ErrNotFound
	}
	if _, err := u.visibleApplication(ctx, p, applicationID); err != nil {
		if errors.Is(err, appDomain.ErrNotFound) {
			return nil, docDomain.ErrNotFound
		}
		return nil, err
	}
	return u.store.Open(ctx, key)
}

func (u *Usecase) visibleApplication(ctx context.Context, p userDomain.Principal, applicationID string) (*appDomain.Application, error) {
	a, err := u.repos.Applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !appDomain.CanView(p, a) {
		return nil, appDomain.ErrNotVisible
	}
	return a, nil
}
