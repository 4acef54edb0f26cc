package service

import (
	"testing"

	"documerge-backend/document"
	"documerge-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBody(t *testing.T) {
	sources := []SourceThesis{
		{
			Thesis: models.Thesis{Title: "Da prescrição"},
			Paragraphs: []document.Paragraph{
				document.NewParagraph("Primeiro parágrafo."),
				{},
				document.NewParagraph("   "),
				{Text: "Misto", Runs: []document.Run{{Text: "Mi", Bold: true}, {Text: "sto", Italic: true}}},
			},
		},
		{
			Thesis:     models.Thesis{Title: "Do dano moral"},
			Paragraphs: []document.Paragraph{document.NewParagraph("Segundo.")},
		},
	}

	body := MergeBody(sources)

	assert.Equal(t, []string{
		"1. Da prescrição",
		"Primeiro parágrafo.",
		"Misto",
		"",
		"2. Do dano moral",
		"Segundo.",
		"",
	}, texts(body))

	assert.Equal(t, document.StyleHeading1, body[0].Style)
	assert.Equal(t, document.StyleHeading1, body[4].Style)
	assert.Equal(t, document.StyleNormal, body[1].Style)

	// mixed formatting collapses to one run carrying both flags
	require.Len(t, body[2].Runs, 1)
	assert.Equal(t, document.Run{Text: "Misto", Bold: true, Italic: true}, body[2].Runs[0])
	assert.Equal(t, document.Run{Text: "Primeiro parágrafo."}, body[1].Runs[0])
}

func TestMergeEmptyThesis(t *testing.T) {
	body := MergeBody([]SourceThesis{{Thesis: models.Thesis{Title: "Vazia"}}})
	assert.Equal(t, []string{"1. Vazia", ""}, texts(body))
}

func TestMergeDocument(t *testing.T) {
	data, err := Merge("Petição", "123", []SourceThesis{
		{Thesis: models.Thesis{Title: "Tese"}, Paragraphs: []document.Paragraph{document.NewParagraph("texto")}},
	})
	require.NoError(t, err)

	paragraphs, err := document.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Petição", "Processo nº: 123", "", "1. Tese", "texto", ""}, texts(paragraphs))
	assert.Equal(t, document.StyleTitle, paragraphs[0].Style)
}

func TestParagraphsFromText(t *testing.T) {
	got := ParagraphsFromText("Linha um\r\n\n   \n  Linha dois com recuo\nfim")
	assert.Equal(t, []string{"Linha um", "  Linha dois com recuo", "fim"}, texts(got))
	assert.Empty(t, ParagraphsFromText("\n\n"))
}
