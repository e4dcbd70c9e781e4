package sourcetext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/commonModels"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = fmt.Errorf("file is larger than %d MB", config.MaxUploadSize>>20)
	ErrUnsupportedType = errors.New("only images and PDF files are supported")
	ErrUnreadablePDF   = errors.New("pdf could not be read")
	ErrNoText          = errors.New("no text could be extracted")
)

var logger = logger_i.NewLogger("SourceText")

// Detect sniffs the content first and falls back to the file extension when
// the sniffer only sees a generic container.
func Detect(name string, content []byte) commonModels.SourceFile {
	mime := mimetype.Detect(content).String()
	src := commonModels.SourceFile{
		Name:        name,
		ContentType: mime,
		DocType:     docTypeOfMime(mime),
		Size:        len(content),
	}
	if src.DocType == commonModels.ERR {
		src.DocType = docTypeOfExt(name)
	}
	return src
}

func docTypeOfMime(mime string) commonModels.DocType {
	switch {
	case strings.HasPrefix(mime, "application/pdf"):
		return commonModels.PDF
	case strings.HasPrefix(mime, "image/"):
		return commonModels.IMAGE
	case strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.wordprocessingml"),
		strings.HasPrefix(mime, "application/vnd.oasis.opendocument.text"),
		strings.HasPrefix(mime, "text/rtf"),
		strings.HasPrefix(mime, "application/rtf"),
		strings.HasPrefix(mime, "text/plain"):
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

func docTypeOfExt(name string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".odt", ".rtf", ".txt":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

// ValidateUpload applies the dashboard's picker rules: images or PDFs up to
// 10 MB. PDFs must open and have at least one page.
func ValidateUpload(name string, content []byte) (commonModels.SourceFile, error) {
	if len(content) == 0 {
		return commonModels.SourceFile{Name: name}, ErrEmptyFile
	}
	if len(content) > config.MaxUploadSize {
		return commonModels.SourceFile{Name: name, Size: len(content)}, ErrFileTooLarge
	}

	src := Detect(name, content)
	if !src.Uploadable() {
		return src, fmt.Errorf("%w: got %s", ErrUnsupportedType, src.ContentType)
	}
	if src.DocType == commonModels.PDF {
		pages, err := countPages(content)
		if err != nil {
			return src, err
		}
		if pages == 0 {
			return src, fmt.Errorf("%w: no pages", ErrUnreadablePDF)
		}
	}
	return src, nil
}

// Extract pulls plain text out of a source document. It is the fallback used
// when the backend returns no raw text.
func Extract(ctx context.Context, name string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyFile
	}
	src := Detect(name, content)
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "file", name, "docType", src.DocType)

	var (
		text string
		err  error
	)
	switch src.DocType {
	case commonModels.PDF:
		text, err = extractPDF(ctx, content)
	case commonModels.DOCX:
		text, err = extractDocument(name, content)
	case commonModels.IMAGE:
		return "", ErrNoText
	default:
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedType, src.ContentType)
	}
	if err != nil {
		log.Warn("text extraction failed", "error", err)
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	log.Debug("extracted text", "chars", len(text))
	return text, nil
}

// extractDocument goes through a temp file because cat picks the parser from
// the file extension.
func extractDocument(name string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".txt"
	}
	tmp, err := os.CreateTemp("", "formflow-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return catFile(tmp.Name())
}
