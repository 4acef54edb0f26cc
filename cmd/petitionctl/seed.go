package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"documerge-backend/app"
	"documerge-backend/models"
	"documerge-backend/service"

	"github.com/google/uuid"
)

// seedFile describes a client questionnaire and the theses it selects.
// Thesis files are resolved relative to the seed file.
type seedFile struct {
	Client struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	} `json:"client"`
	Model struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	} `json:"model"`
	Theses []struct {
		Key         string  `json:"key"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		File        string  `json:"file"`
	} `json:"theses"`
	Questions []struct {
		Text        string   `json:"text"`
		Order       int      `json:"order"`
		Level       int      `json:"level"`
		Affirmative []string `json:"affirmative"`
		Negative    []string `json:"negative"`
	} `json:"questions"`

	dir string
}

type seedResult struct {
	ClientID  uuid.UUID            `json:"client_id"`
	ModelID   uuid.UUID            `json:"model_id"`
	Theses    map[string]uuid.UUID `json:"theses"`
	Questions []uuid.UUID          `json:"questions"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	seed.dir = filepath.Dir(path)

	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *seedFile) validate() error {
	if strings.TrimSpace(s.Client.Name) == "" {
		return fmt.Errorf("client name is required")
	}
	if strings.TrimSpace(s.Model.Name) == "" {
		return fmt.Errorf("model name is required")
	}

	keys := make(map[string]bool, len(s.Theses))
	for _, t := range s.Theses {
		if t.Key == "" || t.File == "" {
			return fmt.Errorf("thesis %q needs a key and a file", t.Title)
		}
		if keys[t.Key] {
			return fmt.Errorf("duplicate thesis key %q", t.Key)
		}
		keys[t.Key] = true
	}

	orders := make(map[int]bool, len(s.Questions))
	for _, q := range s.Questions {
		if orders[q.Order] {
			return fmt.Errorf("duplicate question order %d", q.Order)
		}
		orders[q.Order] = true
		for _, key := range append(append([]string{}, q.Affirmative...), q.Negative...) {
			if !keys[key] {
				return fmt.Errorf("question %q links unknown thesis %q", q.Text, key)
			}
		}
	}
	return nil
}

func (s *seedFile) path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.dir, file)
}

// applySeed writes the seed through the application services
func applySeed(ctx context.Context, a *app.App, seed *seedFile) (*seedResult, error) {
	client := &models.Client{Name: seed.Client.Name, Description: seed.Client.Description}
	if err := a.Clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	model := &models.PetitionModel{ClientID: client.ID, Name: seed.Model.Name, Description: seed.Model.Description}
	if err := a.Questionnaire.CreatePetitionModel(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create petition model: %w", err)
	}

	out := &seedResult{ClientID: client.ID, ModelID: model.ID, Theses: make(map[string]uuid.UUID, len(seed.Theses))}

	for _, t := range seed.Theses {
		data, err := os.ReadFile(seed.path(t.File))
		if err != nil {
			return nil, fmt.Errorf("failed to read thesis %q: %w", t.Key, err)
		}
		title := t.Title
		if strings.TrimSpace(title) == "" {
			title = strings.TrimSuffix(filepath.Base(t.File), filepath.Ext(t.File))
		}
		result, err := a.Documents.CreateThesis(ctx, service.CreateThesisRequest{
			ClientID:    client.ID,
			Title:       title,
			Description: t.Description,
			Data:        data,
		})
		if err != nil {
			return nil, fmt.Errorf("thesis %q: %w", t.Key, err)
		}
		out.Theses[t.Key] = result.Thesis.ID
	}

	for _, q := range seed.Questions {
		question := &models.Question{PetitionModelID: model.ID, Text: q.Text, Order: q.Order, HierarchyLevel: q.Level}
		if err := a.Questionnaire.CreateQuestion(ctx, question); err != nil {
			return nil, fmt.Errorf("failed to create question %q: %w", q.Text, err)
		}
		out.Questions = append(out.Questions, question.ID)

		for _, link := range []struct {
			answer models.AnswerTag
			keys   []string
		}{
			{models.AnswerAffirmative, q.Affirmative},
			{models.AnswerNegative, q.Negative},
		} {
			for _, key := range link.keys {
				if err := a.Questionnaire.CreateThesisLink(ctx, &models.ThesisQuestionLink{
					QuestionID: question.ID,
					ThesisID:   out.Theses[key],
					Answer:     link.answer,
				}); err != nil {
					return nil, fmt.Errorf("failed to link thesis %q: %w", key, err)
				}
			}
		}
	}

	return out, nil
}
