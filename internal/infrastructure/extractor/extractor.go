package extractor

import (
	"context"
	"fmt"
	"io"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

// Extractor turns an uploaded file into plain text, dispatching on the
// declared file type.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, fileType domain.FileType, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if len(raw) == 0 {
		return "", domain.WrapError(domain.ErrExtraction, "extract text", fmt.Errorf("empty file"))
	}

	switch fileType {
	case domain.FileTypePDF:
		return extractPDF(raw)
	case domain.FileTypeDOCX:
		return extractDOCX(raw)
	case domain.FileTypeTXT, domain.FileTypeMD:
		return extractPlainText(raw)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("file type %q", fileType))
	}
}
