package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"documerge-backend/app"
	"documerge-backend/config"
	"documerge-backend/document"
	"documerge-backend/models"
	"documerge-backend/service"
	"documerge-backend/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedJSON = `{
  "client": {"name": "Banco Exemplo"},
  "model": {"name": "Contestação bancária"},
  "theses": [
    {"key": "indebito", "title": "Repetição do indébito", "file": "indebito.docx"},
    {"key": "dano", "title": "Inexistência de dano moral", "file": "dano.docx"}
  ],
  "questions": [
    {"text": "Houve dano moral?", "order": 2, "negative": ["dano"]},
    {"text": "Houve cobrança indevida?", "order": 1, "affirmative": ["indebito"]}
  ]
}`

func writeThesis(t *testing.T, path, text string) {
	t.Helper()
	data, err := document.EncodeParagraphs("", []document.Paragraph{document.NewParagraph(text)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestSeedAndGenerate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeThesis(t, filepath.Join(dir, "indebito.docx"), "Devolução em dobro.")
	writeThesis(t, filepath.Join(dir, "dano.docx"), "Mero aborrecimento.")
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedJSON), 0o644))

	seed, err := loadSeed(seedPath)
	require.NoError(t, err)

	a, err := app.New(ctx, config.Config{
		DBType:           config.DBTypeSQLite,
		SQLitePath:       filepath.Join(dir, "documerge.db"),
		FetchConcurrency: 2,
		Storage:          storage.StorageConfig{Type: storage.StorageTypeLocal, LocalPath: filepath.Join(dir, "files")},
	}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	out, err := applySeed(ctx, a, seed)
	require.NoError(t, err)
	require.Len(t, out.Questions, 2)
	require.Len(t, out.Theses, 2)

	// questions[0] is "Houve dano moral?", order 2
	answers, err := parseAnswers([]string{
		out.Questions[0].String() + "=não",
		out.Questions[1].String() + "=sim",
	})
	require.NoError(t, err)

	result, err := a.Documents.GeneratePetition(ctx, service.GeneratePetitionRequest{
		ModelID:  out.ModelID,
		ClientID: out.ClientID,
		Answers:  answers,
		Actor:    models.Actor{UserID: uuid.New(), Role: models.RoleDrafter},
		Title:    "Contestação",
	})
	require.NoError(t, err)
	require.Len(t, result.Theses, 2)
	assert.Equal(t, out.Theses["indebito"], result.Theses[0].ID)
	assert.Equal(t, out.Theses["dano"], result.Theses[1].ID)
}

func TestSeedValidation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		json string
	}{
		{"missing client", `{"model": {"name": "m"}}`},
		{"missing model", `{"client": {"name": "c"}}`},
		{"unknown thesis", `{"client": {"name": "c"}, "model": {"name": "m"}, "questions": [{"text": "q", "order": 1, "affirmative": ["x"]}]}`},
		{"duplicate order", `{"client": {"name": "c"}, "model": {"name": "m"}, "questions": [{"text": "a", "order": 1}, {"text": "b", "order": 1}]}`},
		{"duplicate key", `{"client": {"name": "c"}, "model": {"name": "m"}, "theses": [{"key": "a", "file": "a.docx"}, {"key": "a", "file": "b.docx"}]}`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "seed.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.json), 0o644))
			_, err := loadSeed(path)
			assert.Error(t, err)
		})
	}
}

func TestParseAnswers(t *testing.T) {
	id := uuid.New()

	answers, err := parseAnswers([]string{id.String() + "=yes"})
	require.NoError(t, err)
	assert.True(t, answers[id])

	answers, err = parseAnswers([]string{id.String() + "=N"})
	require.NoError(t, err)
	assert.False(t, answers[id])

	for _, bad := range []string{id.String(), "nope=yes", id.String() + "=maybe"} {
		_, err := parseAnswers([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestLoadAnswers(t *testing.T) {
	dir := t.TempDir()
	id := uuid.New()

	path := filepath.Join(dir, "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"`+id.String()+`": false}`), 0o644))
	answers, err := loadAnswers(path)
	require.NoError(t, err)
	v, ok := answers[id]
	require.True(t, ok)
	assert.False(t, v)

	require.NoError(t, os.WriteFile(path, []byte(`{"q1": true}`), 0o644))
	_, err = loadAnswers(path)
	assert.Error(t, err)
}

func TestPrintParagraphs(t *testing.T) {
	var b strings.Builder
	printParagraphs(&b, []document.Paragraph{
		{Style: document.StyleHeading1, Text: "1. Tese", Runs: []document.Run{{Text: "1. Tese"}}},
		{Text: "a b", Runs: []document.Run{{Text: "a", Bold: true}, {Text: " "}, {Text: "b", Italic: true}}},
		{},
	})
	assert.Equal(t, "[Heading1] 1. Tese\n**a** _b_\n\n", b.String())
}
