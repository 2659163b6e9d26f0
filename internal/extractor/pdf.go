package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/logger"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Result carries extracted text plus a best-effort word-to-page index.
// PageOfWord[i] is the 1-based page the i-th whitespace-separated word of
// Text came from. Attribution is tracked at whole-page granularity, so words
// near page boundaries may be off by one page.
type Result struct {
	Text       string
	PageOfWord []int
}

// ExtractPDF extracts and normalizes the full text of a PDF file.
// It fails with an extraction error when no text is recoverable, e.g. for
// scanned or secured documents.
func ExtractPDF(path string) (string, error) {
	res, err := ExtractPDFWithPages(path)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ExtractPDFWithPages extracts normalized text together with the per-word
// page index used by the generation pipeline for page-range labels.
func ExtractPDFWithPages(path string) (*Result, error) {
	l := logger.Get()

	file, err := os.Open(path)
	if err != nil {
		return nil, domain.NewExtractionError(fmt.Sprintf("failed to open PDF %s", path), err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, domain.NewExtractionError("failed to stat PDF", err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, domain.NewExtractionError("failed to read PDF", err)
	}

	var pages []string
	var pageOfWord []int
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			l.Warn("Failed to extract text from page", zap.Int("page", i), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
		for range strings.Fields(text) {
			pageOfWord = append(pageOfWord, i)
		}
	}

	normalized := NormalizeText(strings.Join(pages, "\n"))
	if normalized == "" {
		return nil, domain.NewExtractionError(
			"no text could be extracted from the PDF file; it might be scanned or have security restrictions", nil)
	}

	l.Info("Extracted text from PDF",
		zap.String("file", filepath.Base(path)),
		zap.Int("pages", len(pages)),
		zap.Int("chars", len(normalized)))

	return &Result{Text: normalized, PageOfWord: pageOfWord}, nil
}

// ExtractFile extracts normalized text from a PDF or plain-text file,
// dispatching on the file extension.
func ExtractFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ExtractPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.NewExtractionError(fmt.Sprintf("failed to read file %s", path), err)
	}
	normalized := NormalizeText(string(data))
	if normalized == "" {
		return "", domain.NewExtractionError("file contains no extractable text", nil)
	}
	return normalized, nil
}
