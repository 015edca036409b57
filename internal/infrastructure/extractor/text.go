package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
)

func extractPlainText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		// Legacy exports are often Latin-1; promote bytes to runes
		// instead of rejecting the file.
		raw = latin1ToUTF8(raw)
	}
	if bytesLookBinary(raw) {
		return "", domain.WrapError(domain.ErrExtraction, "extract plain text", fmt.Errorf("binary content"))
	}
	text := collapseWhitespace(string(raw))
	if text == "" {
		return "", domain.WrapError(domain.ErrExtraction, "extract plain text", fmt.Errorf("empty content"))
	}
	return text, nil
}

func latin1ToUTF8(raw []byte) []byte {
	out := make([]rune, 0, len(raw))
	for _, b := range raw {
		out = append(out, rune(b))
	}
	return []byte(string(out))
}

func bytesLookBinary(raw []byte) bool {
	sample := raw
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	for _, b := range sample {
		if b == 0x00 {
			return true
		}
	}
	return false
}

var (
	collapseSpaces = regexp.MustCompile(`[ \t]+`)
	collapseLines  = regexp.MustCompile(`\n{3,}`)
)

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = collapseSpaces.ReplaceAllString(s, " ")
	s = collapseLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
