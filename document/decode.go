package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart  = "word/document.xml"
)

// Decode reads the body paragraphs of an encoded document in order.
// Paragraphs inside tables, text boxes and drawings are not part of the body flow
// and are skipped.
func Decode(data []byte) ([]Paragraph, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrCorruptDocument, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	defer rc.Close()

	paragraphs, err := parseBody(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return paragraphs, nil
}

type bodyParser struct {
	paragraphs []Paragraph

	skipDepth   int
	inParagraph bool
	current     Paragraph
	inRun       bool
	run         Run
	inRunProps  bool
	inText      bool
	text        strings.Builder
}

func parseBody(r io.Reader) ([]Paragraph, error) {
	dec := xml.NewDecoder(r)
	p := &bodyParser{}
	sawBody := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == wordNamespace && t.Name.Local == "body" {
				sawBody = true
			}
			p.start(t)
		case xml.EndElement:
			p.end(t)
		case xml.CharData:
			if p.inText {
				p.text.Write(t)
			}
		}
	}

	if !sawBody {
		return nil, errors.New("document has no body")
	}
	return p.paragraphs, nil
}

// skipped elements hold content outside the main text flow
func skipped(local string) bool {
	switch local {
	case "tbl", "txbxContent", "drawing", "pict", "object":
		return true
	}
	return false
}

func (p *bodyParser) start(t xml.StartElement) {
	if t.Name.Space != wordNamespace {
		return
	}
	local := t.Name.Local
	if p.skipDepth > 0 {
		if skipped(local) {
			p.skipDepth++
		}
		return
	}
	if skipped(local) {
		p.skipDepth++
		return
	}

	switch local {
	case "p":
		if !p.inParagraph {
			p.inParagraph = true
			p.current = Paragraph{}
		}
	case "pStyle":
		if p.inParagraph && !p.inRun {
			p.current.Style = Style(attr(t, "val"))
		}
	case "r":
		if p.inParagraph {
			p.inRun = true
			p.run = Run{}
			p.text.Reset()
		}
	case "rPr":
		if p.inRun {
			p.inRunProps = true
		}
	case "b":
		if p.inRunProps {
			p.run.Bold = toggle(t)
		}
	case "i":
		if p.inRunProps {
			p.run.Italic = toggle(t)
		}
	case "t":
		if p.inRun {
			p.inText = true
		}
	case "tab":
		if p.inRun && !p.inRunProps {
			p.text.WriteByte('\t')
		}
	case "br", "cr":
		if p.inRun {
			p.text.WriteByte('\n')
		}
	}
}

func (p *bodyParser) end(t xml.EndElement) {
	if t.Name.Space != wordNamespace {
		return
	}
	local := t.Name.Local
	if p.skipDepth > 0 {
		if skipped(local) {
			p.skipDepth--
		}
		return
	}

	switch local {
	case "t":
		p.inText = false
	case "rPr":
		p.inRunProps = false
	case "r":
		if !p.inRun {
			return
		}
		p.inRun = false
		p.run.Text = p.text.String()
		if p.run.Text == "" {
			return
		}
		p.current.Runs = append(p.current.Runs, p.run)
		p.current.Text += p.run.Text
	case "p":
		if p.inParagraph {
			p.paragraphs = append(p.paragraphs, p.current)
			p.inParagraph = false
		}
	}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggle reads an on/off property; a bare element means on
func toggle(t xml.StartElement) bool {
	for _, a := range t.Attr {
		if a.Name.Local != "val" {
			continue
		}
		switch strings.ToLower(a.Value) {
		case "0", "false", "off", "none":
			return false
		}
	}
	return true
}
