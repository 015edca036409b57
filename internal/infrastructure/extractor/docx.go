package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

// extractDOCX reads word/document.xml from the OpenXML container and
// collects the text runs (<w:t>), inserting newlines at paragraph
// boundaries (<w:p>).
func extractDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract docx", fmt.Errorf("open container: %w", err))
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract docx", fmt.Errorf("missing word/document.xml"))
	}

	rc, err := doc.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract docx", fmt.Errorf("open document part: %w", err))
	}
	defer rc.Close()

	text, err := collectTextRuns(rc)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract docx", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract docx", fmt.Errorf("no text runs found"))
	}
	return text, nil
}

func collectTextRuns(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var out strings.Builder
	inRun := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document part: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				out.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				out.Write(t)
			}
		}
	}
	return collapseWhitespace(out.String()), nil
}
