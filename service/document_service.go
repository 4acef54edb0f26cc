package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"documerge-backend/document"
	"documerge-backend/models"
	"documerge-backend/repository"
	"documerge-backend/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFetchConcurrency bounds parallel thesis downloads during generation
	DefaultFetchConcurrency = 4

	cleanupTimeout = 30 * time.Second
)

// DocumentService generates petitions from questionnaire answers and manages
// the stored documents of theses and petitions
type DocumentService struct {
	questionnaireRepo QuestionnaireRepository
	thesisRepo        ThesisRepository
	petitionRepo      GeneratedPetitionRepository
	storage           storage.Storage
	logger            zerolog.Logger
	fetchConcurrency  int
	now               func() time.Time
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithQuestionnaireRepository sets the questionnaire repository
func DocumentWithQuestionnaireRepository(repo QuestionnaireRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.questionnaireRepo = repo
	}
}

// DocumentWithThesisRepository sets the thesis repository
func DocumentWithThesisRepository(repo ThesisRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.thesisRepo = repo
	}
}

// DocumentWithPetitionRepository sets the generated petition repository
func DocumentWithPetitionRepository(repo GeneratedPetitionRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.petitionRepo = repo
	}
}

// DocumentWithStorage sets the document store
func DocumentWithStorage(st storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.storage = st
	}
}

// DocumentWithLogger sets the logger
func DocumentWithLogger(logger zerolog.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// DocumentWithFetchConcurrency sets how many thesis documents are fetched at once
func DocumentWithFetchConcurrency(n int) DocumentServiceOption {
	return func(s *DocumentService) {
		if n > 0 {
			s.fetchConcurrency = n
		}
	}
}

// DocumentWithClock sets the clock used for object keys
func DocumentWithClock(now func() time.Time) DocumentServiceOption {
	return func(s *DocumentService) {
		s.now = now
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		logger:           zerolog.Nop(),
		fetchConcurrency: DefaultFetchConcurrency,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentService) requirePetitions() error {
	if s.petitionRepo == nil {
		return errors.New("petition repository not set")
	}
	if s.storage == nil {
		return errors.New("storage not set")
	}
	return nil
}

// GeneratePetitionRequest represents a request to generate a petition
type GeneratePetitionRequest struct {
	ModelID    uuid.UUID
	ClientID   uuid.UUID
	Answers    models.Answers
	Actor      models.Actor
	Title      string
	CaseNumber *string
}

// GeneratePetitionResult represents the result of generating a petition
type GeneratePetitionResult struct {
	Petition *models.GeneratedPetition
	// Theses are the merged theses in section order
	Theses []models.Thesis
}

// GeneratePetition selects the theses matching the answers, merges their
// documents into one petition, stores it and records it. On failure nothing
// stays behind: a stored document whose record could not be written is deleted.
func (s *DocumentService) GeneratePetition(ctx context.Context, req GeneratePetitionRequest) (*GeneratePetitionResult, error) {
	if s.questionnaireRepo == nil {
		return nil, errors.New("questionnaire repository not set")
	}
	if err := s.requirePetitions(); err != nil {
		return nil, err
	}

	run := &generation{
		logger: s.logger.With().
			Str("petition_model_id", req.ModelID.String()).
			Str("client_id", req.ClientID.String()).
			Str("user_id", req.Actor.UserID.String()).
			Logger(),
	}

	run.enter(StageValidating)
	title := strings.TrimSpace(req.Title)
	caseNumber := normalizeCaseNumber(req.CaseNumber)
	if err := s.validateGeneration(ctx, req, title); err != nil {
		return nil, run.fail(err)
	}

	run.enter(StageSelecting)
	questions, err := s.questionnaireRepo.ListQuestions(ctx, req.ModelID)
	if err != nil {
		return nil, run.fail(persistence("failed to load questions", err))
	}
	theses, err := SelectTheses(ctx, questions, req.Answers, s.questionnaireRepo.ListLinkedTheses)
	if err != nil {
		return nil, run.fail(err)
	}
	run.logger.Debug().Int("theses", len(theses)).Msg("theses selected")

	run.enter(StageFetching)
	sources, err := s.fetchTheses(ctx, theses)
	if err != nil {
		return nil, run.fail(err)
	}

	run.enter(StageMerging)
	data, err := Merge(title, stringValue(caseNumber), sources)
	if err != nil {
		return nil, run.fail(&Error{Code: CodeInternal, Message: "failed to encode petition", Err: err})
	}

	run.enter(StagePersisting)
	key := storage.ObjectKey(req.ClientID, storage.KindPetition, title, document.Extension, s.now())
	loc, err := s.storage.Put(ctx, key, data)
	if err != nil {
		return nil, run.fail(storeUnavailable("failed to store petition document", err))
	}

	petition := &models.GeneratedPetition{
		UserID:     req.Actor.UserID,
		ClientID:   req.ClientID,
		Title:      title,
		CaseNumber: caseNumber,
		Location:   loc.String(),
		FormData:   models.SnapshotOf(req.Answers),
	}
	if err := s.petitionRepo.Create(ctx, petition); err != nil {
		s.discard(ctx, loc, "petition record was not created")
		return nil, run.fail(persistence("failed to save petition record", err))
	}

	run.enter(StageCommitted)
	run.logger.Info().
		Str("petition_id", petition.ID.String()).
		Str("location", petition.Location).
		Int("theses", len(sources)).
		Msg("petition generated")

	return &GeneratePetitionResult{Petition: petition, Theses: theses}, nil
}

// generation tracks the stage of one GeneratePetition call
type generation struct {
	stage  Stage
	logger zerolog.Logger
}

func (g *generation) enter(stage Stage) {
	g.stage = stage
	g.logger.Debug().Str("stage", string(stage)).Msg("generation stage")
}

// fail moves the generation to StageFailed, recording the stage the error occurred in
func (g *generation) fail(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Stage == "" {
		e.Stage = g.stage
	}
	g.logger.Warn().Err(err).Str("stage", string(g.stage)).Str("code", string(CodeOf(err))).Msg("petition generation failed")
	g.stage = StageFailed
	return err
}

func (s *DocumentService) validateGeneration(ctx context.Context, req GeneratePetitionRequest, title string) error {
	switch {
	case req.ModelID == uuid.Nil:
		return invalid("petition model is required")
	case req.ClientID == uuid.Nil:
		return invalid("client is required")
	case req.Actor.UserID == uuid.Nil:
		return invalid("an authenticated user is required")
	case len(req.Answers) == 0:
		return invalid("at least one answer is required")
	case title == "":
		return invalid("title is required")
	}

	model, err := s.questionnaireRepo.GetPetitionModel(ctx, req.ModelID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("petition model not found")
	}
	if err != nil {
		return persistence("failed to load petition model", err)
	}
	if model.ClientID != req.ClientID {
		return invalid("petition model %s does not belong to client %s", req.ModelID, req.ClientID)
	}
	return nil
}

// fetchTheses downloads and decodes thesis documents in parallel. The result
// keeps the order of theses.
func (s *DocumentService) fetchTheses(ctx context.Context, theses []models.Thesis) ([]SourceThesis, error) {
	sources := make([]SourceThesis, len(theses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchConcurrency)
	for i, thesis := range theses {
		g.Go(func() error {
			paragraphs, err := s.loadDocument(gctx, storage.Location(thesis.Location))
			if err != nil {
				return thesisError(thesis, err)
			}
			sources[i] = SourceThesis{Thesis: thesis, Paragraphs: paragraphs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// loadDocument reads and decodes the document at loc
func (s *DocumentService) loadDocument(ctx context.Context, loc storage.Location) ([]document.Paragraph, error) {
	rc, err := s.storage.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", storage.ErrUnavailable, loc, err)
	}
	return document.Decode(data)
}

func thesisError(thesis models.Thesis, err error) *Error {
	if errors.Is(err, document.ErrCorruptDocument) {
		return &Error{
			Code:     CodeCorruptDocument,
			Message:  fmt.Sprintf("document of thesis %q cannot be read", thesis.Title),
			ThesisID: thesis.ID,
			Err:      err,
		}
	}
	return &Error{
		Code:     CodeThesisUnavailable,
		Message:  fmt.Sprintf("document of thesis %q cannot be fetched", thesis.Title),
		ThesisID: thesis.ID,
		Err:      err,
	}
}

// discard deletes a stored document that no record points to. It runs even
// when ctx is already cancelled.
func (s *DocumentService) discard(ctx context.Context, loc storage.Location, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.storage.Delete(ctx, loc); err != nil {
		s.logger.Error().Err(err).Str("location", loc.String()).Str("reason", reason).Msg("orphaned document could not be deleted")
		return
	}
	s.logger.Debug().Str("location", loc.String()).Str("reason", reason).Msg("discarded stored document")
}

// GetPetitionContentResult represents the decoded content of a petition
type GetPetitionContentResult struct {
	Petition   *models.GeneratedPetition
	Paragraphs []document.Paragraph
	// Content is the paragraph text joined by newlines
	Content string
}

// GetPetitionContent decodes the stored document of a petition
func (s *DocumentService) GetPetitionContent(ctx context.Context, petitionID uuid.UUID) (*GetPetitionContentResult, error) {
	if err := s.requirePetitions(); err != nil {
		return nil, err
	}

	petition, err := s.getPetition(ctx, petitionID)
	if err != nil {
		return nil, err
	}

	paragraphs, err := s.loadDocument(ctx, storage.Location(petition.Location))
	if err != nil {
		return nil, petitionDocumentError(err)
	}

	return &GetPetitionContentResult{
		Petition:   petition,
		Paragraphs: paragraphs,
		Content:    document.PlainText(paragraphs),
	}, nil
}

// GetPetitionFileResult is a downloadable petition document
type GetPetitionFileResult struct {
	Petition *models.GeneratedPetition
	Data     []byte
	Filename string
	MimeType string
}

// GetPetitionFile returns the stored document bytes of a petition
func (s *DocumentService) GetPetitionFile(ctx context.Context, petitionID uuid.UUID) (*GetPetitionFileResult, error) {
	if err := s.requirePetitions(); err != nil {
		return nil, err
	}

	petition, err := s.getPetition(ctx, petitionID)
	if err != nil {
		return nil, err
	}

	rc, err := s.storage.Get(ctx, storage.Location(petition.Location))
	if err != nil {
		return nil, petitionDocumentError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, storeUnavailable("failed to read petition document", err)
	}

	return &GetPetitionFileResult{
		Petition: petition,
		Data:     data,
		Filename: petition.Title + document.Extension,
		MimeType: document.MimeType,
	}, nil
}

// UpdatePetitionContentRequest replaces the body of a petition with edited text
type UpdatePetitionContentRequest struct {
	PetitionID uuid.UUID
	Content    string
	// Title optionally renames the petition
	Title *string
}

// UpdatePetitionContentResult represents the updated petition
type UpdatePetitionContentResult struct {
	Petition *models.GeneratedPetition
}

// UpdatePetitionContent writes a new document with one paragraph per non-blank
// line, points the record at it and only then deletes the previous document.
func (s *DocumentService) UpdatePetitionContent(ctx context.Context, req UpdatePetitionContentRequest) (*UpdatePetitionContentResult, error) {
	if err := s.requirePetitions(); err != nil {
		return nil, err
	}
	if req.PetitionID == uuid.Nil {
		return nil, invalid("petition is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, invalid("content is required")
	}

	petition, err := s.getPetition(ctx, req.PetitionID)
	if err != nil {
		return nil, err
	}

	updated := *petition
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title cannot be blank")
		}
		updated.Title = title
	}

	data, err := document.Encode(updated.Title, stringValue(updated.CaseNumber), ParagraphsFromText(req.Content))
	if err != nil {
		return nil, &Error{Code: CodeInternal, Message: "failed to encode petition", Err: err}
	}

	key := storage.ObjectKey(updated.ClientID, storage.KindPetition, updated.Title, document.Extension, s.now())
	loc, err := s.storage.Put(ctx, key, data)
	if err != nil {
		return nil, storeUnavailable("failed to store petition document", err)
	}

	previous := storage.Location(petition.Location)
	updated.Location = loc.String()
	if err := s.petitionRepo.Update(ctx, &updated); err != nil {
		s.discard(ctx, loc, "petition record was not updated")
		return nil, persistence("failed to update petition record", err)
	}

	if previous != loc {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.Warn().Err(err).
				Str("petition_id", updated.ID.String()).
				Str("location", previous.String()).
				Msg("previous petition document could not be deleted")
		}
	}

	s.logger.Info().Str("petition_id", updated.ID.String()).Msg("petition content updated")
	return &UpdatePetitionContentResult{Petition: &updated}, nil
}

// DeletePetition removes a petition record, then its document. A document that
// cannot be deleted is logged and does not keep the record alive.
func (s *DocumentService) DeletePetition(ctx context.Context, petitionID uuid.UUID) error {
	if err := s.requirePetitions(); err != nil {
		return err
	}

	petition, err := s.getPetition(ctx, petitionID)
	if err != nil {
		return err
	}

	if err := s.petitionRepo.Delete(ctx, petition.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("petition not found")
		}
		return persistence("failed to delete petition record", err)
	}

	if err := s.storage.Delete(ctx, storage.Location(petition.Location)); err != nil {
		s.logger.Warn().Err(err).
			Str("petition_id", petition.ID.String()).
			Str("location", petition.Location).
			Msg("petition document could not be deleted")
	}

	s.logger.Info().Str("petition_id", petition.ID.String()).Msg("petition deleted")
	return nil
}

// CreateThesisRequest represents a thesis upload
type CreateThesisRequest struct {
	ClientID    uuid.UUID
	Title       string
	Description *string
	Data        []byte
}

// CreateThesisResult represents the created thesis
type CreateThesisResult struct {
	Thesis *models.Thesis
}

// CreateThesis checks that the uploaded bytes are a readable document, stores
// them and records the thesis
func (s *DocumentService) CreateThesis(ctx context.Context, req CreateThesisRequest) (*CreateThesisResult, error) {
	if s.thesisRepo == nil {
		return nil, errors.New("thesis repository not set")
	}
	if s.storage == nil {
		return nil, errors.New("storage not set")
	}

	title := strings.TrimSpace(req.Title)
	switch {
	case req.ClientID == uuid.Nil:
		return nil, invalid("client is required")
	case title == "":
		return nil, invalid("title is required")
	case len(req.Data) == 0:
		return nil, invalid("document is required")
	}

	if _, err := document.Decode(req.Data); err != nil {
		return nil, &Error{Code: CodeCorruptDocument, Message: "uploaded file is not a readable document", Err: err}
	}

	key := storage.ObjectKey(req.ClientID, storage.KindThesis, title, document.Extension, s.now())
	loc, err := s.storage.Put(ctx, key, req.Data)
	if err != nil {
		return nil, storeUnavailable("failed to store thesis document", err)
	}

	thesis := &models.Thesis{
		ClientID:    req.ClientID,
		Title:       title,
		Description: req.Description,
		Location:    loc.String(),
	}
	if err := s.thesisRepo.Create(ctx, thesis); err != nil {
		s.discard(ctx, loc, "thesis record was not created")
		return nil, persistence("failed to save thesis record", err)
	}

	s.logger.Info().Str("thesis_id", thesis.ID.String()).Str("location", thesis.Location).Msg("thesis created")
	return &CreateThesisResult{Thesis: thesis}, nil
}

// DeleteThesis removes a thesis record, its links and its document
func (s *DocumentService) DeleteThesis(ctx context.Context, thesisID uuid.UUID) error {
	if s.thesisRepo == nil {
		return errors.New("thesis repository not set")
	}
	if s.storage == nil {
		return errors.New("storage not set")
	}

	thesis, err := s.thesisRepo.GetByID(ctx, thesisID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("thesis not found")
	}
	if err != nil {
		return persistence("failed to load thesis", err)
	}

	if err := s.thesisRepo.Delete(ctx, thesis.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("thesis not found")
		}
		return persistence("failed to delete thesis record", err)
	}

	if err := s.storage.Delete(ctx, storage.Location(thesis.Location)); err != nil {
		s.logger.Warn().Err(err).
			Str("thesis_id", thesis.ID.String()).
			Str("location", thesis.Location).
			Msg("thesis document could not be deleted")
	}
	return nil
}

func (s *DocumentService) getPetition(ctx context.Context, id uuid.UUID) (*models.GeneratedPetition, error) {
	petition, err := s.petitionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("petition not found")
	}
	if err != nil {
		return nil, persistence("failed to load petition", err)
	}
	return petition, nil
}

func petitionDocumentError(err error) *Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: "petition document not found", Err: err}
	case errors.Is(err, document.ErrCorruptDocument):
		return &Error{Code: CodeCorruptDocument, Message: "petition document cannot be read", Err: err}
	default:
		return storeUnavailable("failed to fetch petition document", err)
	}
}

// normalizeCaseNumber drops blank case numbers
func normalizeCaseNumber(caseNumber *string) *string {
	if caseNumber == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*caseNumber)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
