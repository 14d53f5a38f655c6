package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	docDomain "loanflow-backend/internal/domain/document"
	"loanflow-backend/internal/domain/errs"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var ErrBadKey = errs.New(errs.ErrNotFound, "blobstore: invalid key")

// Store writes blobs under <applicationID>/<uuid><ext> on an afero filesystem
// and serves them back under baseURL/files/.
type Store struct {
	fs      afero.Fs
	baseURL string
}

var _ docDomain.Store = (*Store)(nil)

func New(fs afero.Fs, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewOS roots the store at dir on the local disk.
func NewOS(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

func (s *Store) URL(key string) string { return s.baseURL + "/files/" + key }

func (s *Store) Put(ctx context.Context, applicationID, ext string, body io.Reader) (docDomain.Object, error) {
	if err := ctx.Err(); err != nil {
		return docDomain.Object{}, err
	}
	key := path.Join(applicationID, uuid.NewString()+ext)
	if err := checkKey(key); err != nil {
		return docDomain.Object{}, err
	}
	if err := s.fs.MkdirAll(applicationID, 0o750); err != nil {
		return docDomain.Object{}, err
	}
	f, err := s.fs.OpenFile(key, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return docDomain.Object{}, err
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(key)
		return docDomain.Object{}, err
	}
	return docDomain.Object{Key: key, URL: s.URL(key), Size: n}, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, docDomain.ErrNotFound
	}
	return f, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := s.fs.Remove(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// checkKey accepts exactly <dir>/<name> with no traversal.
func checkKey(key string) error {
	parts := strings.Split(key, "/")
	if len(parts) != 2 {
		return ErrBadKey
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `\`) {
			return ErrBadKey
		}
	}
	return nil
}
