package service

import (
	"fmt"
	"strings"

	"documerge-backend/document"
	"documerge-backend/models"
)

// SourceThesis is a selected thesis with its decoded content
type SourceThesis struct {
	Thesis     models.Thesis
	Paragraphs []document.Paragraph
}

// MergeBody lays out one numbered section per thesis: a heading, the
// non-blank paragraphs of the thesis and a blank separator.
func MergeBody(sources []SourceThesis) []document.Paragraph {
	var body []document.Paragraph
	for i, src := range sources {
		heading := fmt.Sprintf("%d. %s", i+1, src.Thesis.Title)
		body = append(body, document.Paragraph{
			Style: document.StyleHeading1,
			Text:  heading,
			Runs:  []document.Run{{Text: heading}},
		})

		for _, p := range src.Paragraphs {
			if p.IsBlank() {
				continue
			}
			body = append(body, flatten(p))
		}

		body = append(body, document.Paragraph{})
	}
	return body
}

// flatten puts the paragraph text in a single run. The run is bold when any
// source run is bold, and italic likewise.
func flatten(p document.Paragraph) document.Paragraph {
	run := document.Run{Text: p.Text}
	for _, r := range p.Runs {
		run.Bold = run.Bold || r.Bold
		run.Italic = run.Italic || r.Italic
	}
	return document.Paragraph{Text: p.Text, Runs: []document.Run{run}}
}

// Merge encodes the merged petition document
func Merge(title, caseNumber string, sources []SourceThesis) ([]byte, error) {
	return document.Encode(title, caseNumber, MergeBody(sources))
}

// ParagraphsFromText turns edited plain text into paragraphs, one per non-blank line
func ParagraphsFromText(text string) []document.Paragraph {
	var paragraphs []document.Paragraph
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, document.NewParagraph(line))
	}
	return paragraphs
}
