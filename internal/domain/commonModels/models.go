package commonModels

// DocType groups source files by how text can be pulled out of them.
type DocType string

var PDF DocType = "PDF"
var IMAGE DocType = "IMAGE"

// DOCX covers every format lu4p/cat reads: docx, odt, rtf and plain text.
var DOCX DocType = "DOCX"
var ERR DocType = "ERROR"

type SourceFile struct {
	Name        string  `json:"file_name"`
	ContentType string  `json:"content_type"`
	DocType     DocType `json:"doc_type"`
	Size        int     `json:"size"`
}

// Uploadable is what the extraction backend accepts: images and PDFs.
func (s SourceFile) Uploadable() bool {
	return s.DocType == PDF || s.DocType == IMAGE
}
