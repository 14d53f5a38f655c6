package document

import (
	"context"
	"io"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	Save(ctx context.Context, d *Document) error
	Delete(ctx context.Context, documentID string) error
	// DeleteByApplicationID permanently removes every row of an application.
	DeleteByApplicationID(ctx context.Context, applicationID string) error
	GetByDocumentID(ctx context.Context, documentID string) (*Document, error)
	ListByApplicationID(ctx context.Context, applicationID string) ([]Document, error)
	ExistsOfType(ctx context.Context, applicationID string, t Type) (bool, error)
}

// Object is a stored blob.
type Object struct {
	Key  string
	URL  string
	Size int64
}

// Store keeps document blobs and hands back a stable retrievable URL.
type Store interface {
	Put(ctx context.Context, applicationID, ext string, body io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
