// Package document reads and writes the word-processing documents that hold
// thesis content and generated petitions (Office Open XML, ".docx").
package document

import (
	"errors"
	"strings"
)

const (
	// MimeType is the media type of encoded documents
	MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// Extension is the file extension of encoded documents
	Extension = ".docx"
)

// ErrCorruptDocument is returned when bytes cannot be decoded as a document
var ErrCorruptDocument = errors.New("corrupt document")

// Style names a paragraph style
type Style string

const (
	StyleNormal   Style = ""
	StyleTitle    Style = "Title"
	StyleHeading1 Style = "Heading1"
)

// Run is a span of text sharing character formatting
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Paragraph is a block of text. Text is the concatenation of the run texts.
type Paragraph struct {
	Style Style
	Text  string
	Runs  []Run
}

// NewParagraph returns an unformatted paragraph holding text
func NewParagraph(text string) Paragraph {
	if text == "" {
		return Paragraph{}
	}
	return Paragraph{Text: text, Runs: []Run{{Text: text}}}
}

// IsBlank reports whether the paragraph has no visible text
func (p Paragraph) IsBlank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// CaseNumberLine renders the case number line placed under the title
func CaseNumberLine(caseNumber string) string {
	return "Processo nº: " + caseNumber
}

// PlainText joins paragraph texts with newlines
func PlainText(paragraphs []Paragraph) string {
	lines := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}
