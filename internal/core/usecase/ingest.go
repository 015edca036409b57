package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

const maxUploadBytes = 50 << 20

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	chunks  ports.ChunkRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		chunks:  chunks,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	userID, filename string,
	size int64,
	body io.Reader,
) (*domain.Document, error) {
	if userID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("missing user id"))
	}
	if size > maxUploadBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("file size %d exceeds limit %d", size, maxUploadBytes))
	}
	fileType, ok := domain.ParseFileType(extension(filename))
	if !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload document",
			fmt.Errorf("extension %q", extension(filename)))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s/%s_%s", userID, id, sanitizeFilename(filename))
	now := time.Now().UTC()

	written, err := uc.storage.Save(ctx, storageKey, io.LimitReader(body, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	if written > maxUploadBytes {
		if removeErr := uc.storage.Remove(ctx, storageKey); removeErr != nil {
			return nil, fmt.Errorf("remove oversized upload: %w", removeErr)
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("stream exceeds limit %d", maxUploadBytes))
	}

	doc := &domain.Document{
		ID:               id,
		UserID:           userID,
		Filename:         sanitizeFilename(filename),
		OriginalFilename: filename,
		StoragePath:      storageKey,
		FileType:         fileType,
		FileSize:         written,
		Status:           domain.StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return doc, nil
}

func (uc *IngestDocumentUseCase) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := uc.owned(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := uc.storage.Remove(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("remove stored file: %w", err)
	}
	if err := uc.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}

func (uc *IngestDocumentUseCase) GetByID(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	return uc.owned(ctx, userID, documentID)
}

func (uc *IngestDocumentUseCase) ListByUser(ctx context.Context, userID string) ([]domain.Document, error) {
	docs, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (uc *IngestDocumentUseCase) ListChunks(ctx context.Context, userID, documentID string) ([]domain.Chunk, error) {
	if _, err := uc.owned(ctx, userID, documentID); err != nil {
		return nil, err
	}
	chunks, err := uc.chunks.ListChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return chunks, nil
}

func (uc *IngestDocumentUseCase) owned(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.UserID != userID {
		return nil, domain.WrapError(domain.ErrForbidden, "fetch document",
			fmt.Errorf("document %s does not belong to user %s", documentID, userID))
	}
	return doc, nil
}

func extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
