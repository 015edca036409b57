package extractor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

func extractPDF(raw []byte) (string, error) {
	if len(raw) < 5 || string(raw[:5]) != "%PDF-" {
		return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("missing %%PDF header"))
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("open reader: %w", err))
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("plain text: %w", err))
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("read text: %w", err))
	}
	return collapseWhitespace(string(text)), nil
}
