package service

import (
	"cmp"
	"context"
	"slices"

	"documerge-backend/models"

	"github.com/google/uuid"
)

// LinkLookup returns the theses linked to a question under an answer tag
type LinkLookup func(ctx context.Context, questionID uuid.UUID, answer models.AnswerTag) ([]models.Thesis, error)

// SelectTheses walks questions in display order and collects the theses linked
// to each given answer. A thesis reached from several questions keeps its first
// position. Questions without an answer are skipped.
func SelectTheses(ctx context.Context, questions []models.Question, answers models.Answers, linksFor LinkLookup) ([]models.Thesis, error) {
	ordered := slices.Clone(questions)
	slices.SortStableFunc(ordered, func(a, b models.Question) int {
		return cmp.Compare(a.Order, b.Order)
	})

	seen := make(map[uuid.UUID]struct{})
	var selected []models.Thesis
	for _, q := range ordered {
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}

		theses, err := linksFor(ctx, q.ID, models.AnswerTagFor(answer))
		if err != nil {
			return nil, &Error{
				Code:    CodePersistenceFailure,
				Message: "failed to load theses linked to question " + q.ID.String(),
				Stage:   StageSelecting,
				Err:     err,
			}
		}

		for _, t := range theses {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			selected = append(selected, t)
		}
	}

	if len(selected) == 0 {
		return nil, &Error{
			Code:    CodeNoApplicableThesis,
			Message: ErrNoApplicableThesis.Message,
			Stage:   StageSelecting,
		}
	}
	return selected, nil
}
