package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	chunks    ports.ChunkRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	analyzer  ports.ContentAnalyzer
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	analyzer ports.ContentAnalyzer,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		chunks:    chunks,
		storage:   storage,
		extractor: extractor,
		analyzer:  analyzer,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, analysis, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.persistAnalysis(ctx, doc.ID, analysis); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusProcessed, ""); err != nil {
		return fmt.Errorf("set status=processed: %w", err)
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.Document, *domain.ContentAnalysis, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	analysis, err := uc.analyze(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	return doc, analysis, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	file, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open stored file: %w", err)
	}
	defer file.Close()

	text, err := uc.extractor.Extract(ctx, doc.FileType, file)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) analyze(ctx context.Context, text string) (*domain.ContentAnalysis, error) {
	analysis, err := uc.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyze content: %w", err)
	}
	if len(analysis.Chunks) == 0 {
		return nil, domain.WrapError(domain.ErrExtraction, "analyze content", errors.New("analysis produced zero chunks"))
	}
	return analysis, nil
}

func (uc *ProcessDocumentUseCase) persistAnalysis(ctx context.Context, documentID string, analysis *domain.ContentAnalysis) error {
	if err := uc.repo.SaveAnalysis(ctx, documentID, *analysis); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	if err := uc.chunks.ReplaceChunks(ctx, documentID, analysis.Chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
