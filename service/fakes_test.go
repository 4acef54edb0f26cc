package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"documerge-backend/document"
	"documerge-backend/models"
	"documerge-backend/repository"
	"documerge-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// opLog records storage and repository writes in the order they happen
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

func (l *opLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

type memStorage struct {
	mu      sync.Mutex
	log     *opLog
	objects map[storage.Location][]byte

	putErr    error
	deleteErr error
	getErr    map[storage.Location]error
	getDelay  time.Duration

	open        int
	inFlight    int
	maxInFlight int
}

func newMemStorage(log *opLog) *memStorage {
	return &memStorage{
		log:     log,
		objects: make(map[storage.Location][]byte),
		getErr:  make(map[storage.Location]error),
	}
}

func (m *memStorage) Put(ctx context.Context, key string, data []byte) (storage.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return "", m.putErr
	}
	loc := storage.Location("mem://test/" + key)
	m.objects[loc] = bytes.Clone(data)
	m.log.add("put %s", loc)
	return loc, nil
}

func (m *memStorage) Get(ctx context.Context, loc storage.Location) (io.ReadCloser, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	err := m.getErr[loc]
	data, ok := m.objects[loc]
	m.mu.Unlock()

	if m.getDelay > 0 {
		time.Sleep(m.getDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, loc)
	}
	m.open++
	return &trackedReader{Reader: bytes.NewReader(data), store: m}, nil
}

func (m *memStorage) Delete(ctx context.Context, loc storage.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, loc)
	m.log.add("delete %s", loc)
	return nil
}

func (m *memStorage) has(loc string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[storage.Location(loc)]
	return ok
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memStorage) openReaders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

type trackedReader struct {
	*bytes.Reader
	store *memStorage
}

func (r *trackedReader) Close() error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.open--
	return nil
}

type linkKey struct {
	question uuid.UUID
	answer   models.AnswerTag
}

type fakeQuestionnaire struct {
	petitionModels map[uuid.UUID]*models.PetitionModel
	questions      map[uuid.UUID][]models.Question
	links          map[linkKey][]models.Thesis
	modelErr       error
	linkErr        error
}

func (f *fakeQuestionnaire) GetPetitionModel(ctx context.Context, id uuid.UUID) (*models.PetitionModel, error) {
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	m, ok := f.petitionModels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeQuestionnaire) ListQuestions(ctx context.Context, modelID uuid.UUID) ([]models.Question, error) {
	return f.questions[modelID], nil
}

func (f *fakeQuestionnaire) ListLinkedTheses(ctx context.Context, questionID uuid.UUID, answer models.AnswerTag) ([]models.Thesis, error) {
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	return f.links[linkKey{questionID, answer}], nil
}

type fakeTheses struct {
	mu        sync.Mutex
	theses    map[uuid.UUID]*models.Thesis
	createErr error
	deleteErr error
}

func (f *fakeTheses) Create(ctx context.Context, thesis *models.Thesis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	thesis.ID = uuid.New()
	thesis.CreatedAt = time.Now()
	thesis.UpdatedAt = thesis.CreatedAt
	cp := *thesis
	f.theses[thesis.ID] = &cp
	return nil
}

func (f *fakeTheses) GetByID(ctx context.Context, id uuid.UUID) (*models.Thesis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.theses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTheses) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.theses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.theses, id)
	return nil
}

type fakePetitions struct {
	mu        sync.Mutex
	log       *opLog
	petitions map[uuid.UUID]*models.GeneratedPetition
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakePetitions) Create(ctx context.Context, p *models.GeneratedPetition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.petitions[p.ID] = &cp
	f.log.add("create %s", p.ID)
	return nil
}

func (f *fakePetitions) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedPetition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.petitions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePetitions) Update(ctx context.Context, p *models.GeneratedPetition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.petitions[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	f.petitions[p.ID] = &cp
	f.log.add("update %s", p.ID)
	return nil
}

func (f *fakePetitions) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.petitions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.petitions, id)
	f.log.add("delete-record %s", id)
	return nil
}

func (f *fakePetitions) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GeneratedPetition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GeneratedPetition
	for _, p := range f.petitions {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePetitions) ListAll(ctx context.Context) ([]*models.GeneratedPetition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GeneratedPetition
	for _, p := range f.petitions {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePetitions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.petitions)
}

var errBoom = errors.New("boom")

type fixture struct {
	t             *testing.T
	log           *opLog
	store         *memStorage
	questionnaire *fakeQuestionnaire
	theses        *fakeTheses
	petitions     *fakePetitions
	svc           *DocumentService

	clientID uuid.UUID
	modelID  uuid.UUID
	actor    models.Actor
}

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...DocumentServiceOption) *fixture {
	t.Helper()
	log := &opLog{}
	f := &fixture{
		t:     t,
		log:   log,
		store: newMemStorage(log),
		questionnaire: &fakeQuestionnaire{
			petitionModels: make(map[uuid.UUID]*models.PetitionModel),
			questions:      make(map[uuid.UUID][]models.Question),
			links:          make(map[linkKey][]models.Thesis),
		},
		theses:    &fakeTheses{theses: make(map[uuid.UUID]*models.Thesis)},
		petitions: &fakePetitions{log: log, petitions: make(map[uuid.UUID]*models.GeneratedPetition)},
		clientID:  uuid.New(),
		modelID:   uuid.New(),
		actor:     models.Actor{UserID: uuid.New(), Role: models.RoleDrafter},
	}
	f.questionnaire.petitionModels[f.modelID] = &models.PetitionModel{ID: f.modelID, ClientID: f.clientID, Name: "Contestação"}

	base := []DocumentServiceOption{
		DocumentWithQuestionnaireRepository(f.questionnaire),
		DocumentWithThesisRepository(f.theses),
		DocumentWithPetitionRepository(f.petitions),
		DocumentWithStorage(f.store),
		DocumentWithClock(func() time.Time { return fixedNow }),
	}
	f.svc = NewDocumentService(append(base, opts...)...)
	return f
}

func (f *fixture) addQuestion(order int) models.Question {
	q := models.Question{ID: uuid.New(), PetitionModelID: f.modelID, Text: fmt.Sprintf("Pergunta %d?", order), Order: order}
	f.questionnaire.questions[f.modelID] = append(f.questionnaire.questions[f.modelID], q)
	return q
}

// addThesis stores a thesis document holding paragraphs
func (f *fixture) addThesis(title string, paragraphs ...document.Paragraph) models.Thesis {
	f.t.Helper()
	data, err := document.EncodeParagraphs(title, paragraphs)
	require.NoError(f.t, err)
	loc, err := f.store.Put(context.Background(), "theses/"+title+".docx", data)
	require.NoError(f.t, err)
	return models.Thesis{ID: uuid.New(), ClientID: f.clientID, Title: title, Location: loc.String()}
}

func (f *fixture) link(q models.Question, answer models.AnswerTag, theses ...models.Thesis) {
	key := linkKey{q.ID, answer}
	f.questionnaire.links[key] = append(f.questionnaire.links[key], theses...)
}

func (f *fixture) request(answers models.Answers) GeneratePetitionRequest {
	return GeneratePetitionRequest{
		ModelID:  f.modelID,
		ClientID: f.clientID,
		Answers:  answers,
		Actor:    f.actor,
		Title:    "Contestação - Banco X",
	}
}

func (f *fixture) decodeStored(loc string) []document.Paragraph {
	f.t.Helper()
	rc, err := f.store.Get(context.Background(), storage.Location(loc))
	require.NoError(f.t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(f.t, err)
	paragraphs, err := document.Decode(data)
	require.NoError(f.t, err)
	return paragraphs
}

func texts(paragraphs []document.Paragraph) []string {
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = p.Text
	}
	return out
}

func titles(theses []models.Thesis) []string {
	out := make([]string, len(theses))
	for i, t := range theses {
		out[i] = t.Title
	}
	return out
}
