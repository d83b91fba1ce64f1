package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/storage"
	"github.com/google/uuid"
)

// Upload is a single multipart photo.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult carries the public URL clients store on the store or product.
type UploadResult struct {
	Photo string `json:"photo"`
}

// Service exposes photo upload semantics.
type Service interface {
	Upload(ctx context.Context, kind enums.MediaKind, upload Upload) (*UploadResult, error)
}

type service struct {
	store    storage.ObjectStore
	maxBytes int64
	newID    func() uuid.UUID
}

// NewService constructs a media service writing to store.
func NewService(store storage.ObjectStore, maxBytes int64) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{store: store, maxBytes: maxBytes, newID: uuid.New}, nil
}

func (s *service) Upload(ctx context.Context, kind enums.MediaKind, upload Upload) (*UploadResult, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload kind must be stores or products")
	}
	if upload.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo is required")
	}
	if err := checkFileType(upload.Filename, upload.ContentType); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "only images are allowed ("+allowedDescription+")")
	}
	if upload.Size > s.maxBytes {
		return nil, s.tooLarge()
	}

	raw, err := io.ReadAll(io.LimitReader(upload.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read photo")
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, s.tooLarge()
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo could not be decoded")
	}
	out, err := render(src)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "process photo")
	}

	key := fmt.Sprintf("%s/%s.jpg", kind, s.newID())
	url, err := s.store.Put(ctx, key, "image/jpeg", bytes.NewReader(out))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store photo")
	}
	return &UploadResult{Photo: url}, nil
}

func (s *service) tooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "photo is too large").
		WithDetails(map[string]any{"max_bytes": s.maxBytes})
}
