package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/FormFlow/internal/normalizer"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

var contentTypes = map[Format]string{
	FormatJSON: "application/json",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Source is everything an export may draw from.
type Source struct {
	ID       string
	Document normalizer.Document
	RawText  string
}

func FileName(id string, format Format) string {
	return "extraction_" + id + "." + string(format)
}

func Render(src Source, format Format) (File, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = src.Document.Pretty()
	case FormatCSV:
		data, err = CSV(normalizer.Rows(src.Document, normalizer.ModeTable))
	case FormatXLSX:
		data, err = XLSX(normalizer.Rows(src.Document, normalizer.ModeTable), src.RawText)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return File{}, fmt.Errorf("render %s export: %w", format, err)
	}
	return File{Name: FileName(src.ID, format), ContentType: contentTypes[format], Data: data}, nil
}

// CSV writes a Field,Value sheet. Quotes inside values are doubled.
func CSV(rows []normalizer.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Field", "Value"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.Field, row.Value}); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return buf.Bytes(), nil
}
