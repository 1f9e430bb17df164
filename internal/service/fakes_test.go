package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/queue"
	"github.com/iliyamo/healthsync/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.  Habit
// and ledger writes mirror the transactional behavior of the real stores.
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*model.User
	habits   []model.HabitRecord
	ledger   []model.TokenTransaction
	records  []model.MedicalRecord
	papers   []model.PaperworkTemplate
	preds    []model.HealthPrediction
	meds     []model.Medication
	contacts []model.EmergencyContact
	alerts   []model.HealthAlert
	sessions map[string]model.ChatSession
	messages []model.ChatMessage
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*model.User{}, sessions: map[string]model.ChatSession{}}
}

func (m *memStore) id(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addUser(name string) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{ID: m.id("user"), Email: name + "@example.com", Name: name}
	m.users[u.ID] = u
	return *u
}

func (m *memStore) credit(userID string, amount int, category, desc string, at time.Time) {
	m.users[userID].Tokens += amount
	m.ledger = append(m.ledger, model.TokenTransaction{
		ID: m.id("tx"), UserID: userID, Amount: amount, TransactionType: model.TransactionType(amount),
		Category: category, Description: desc, CreatedAt: at,
	})
}

// users

type memUsers struct{ *memStore }

func (s memUsers) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if x.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = s.id("user")
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return *u, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

// habits

type memHabits struct{ *memStore }

func (s memHabits) Create(_ context.Context, h *model.HabitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[h.UserID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for _, x := range s.habits {
		if x.UserID == h.UserID && x.HabitDate == h.HabitDate {
			return repository.ErrHabitExists
		}
	}
	h.ID = s.id("habit")
	s.habits = append(s.habits, *h)
	u.HealthScore = h.HealthScoreImpact
	if h.TokensEarned > 0 {
		s.credit(h.UserID, h.TokensEarned, model.CategoryHabits, "Daily habit logging", h.CreatedAt)
	}
	return nil
}

func (s memHabits) ListByUser(_ context.Context, userID string, limit int) ([]model.HabitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HabitRecord
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HabitDate > out[j].HabitDate })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ledger

type memLedger struct{ *memStore }

func (s memLedger) Redeem(_ context.Context, userID string, amount int, desc string, at time.Time) (model.TokenTransaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return model.TokenTransaction{}, 0, repository.ErrUserNotFound
	}
	if u.Tokens < amount {
		return model.TokenTransaction{}, 0, repository.ErrInsufficientTokens
	}
	s.credit(userID, -amount, model.CategoryRedemption, desc, at)
	return s.ledger[len(s.ledger)-1], u.Tokens, nil
}

func (s memLedger) ListByUser(_ context.Context, userID string, limit int) ([]model.TokenTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TokenTransaction
	for i := len(s.ledger) - 1; i >= 0; i-- {
		if s.ledger[i].UserID == userID {
			out = append(out, s.ledger[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s memLedger) TotalsByCategory(_ context.Context, userID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, t := range s.ledger {
		if t.UserID == userID {
			out[t.Category] += t.Amount
		}
	}
	return out, nil
}

func (s memLedger) TotalEarned(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, t := range s.ledger {
		if t.UserID == userID && t.Amount > 0 {
			total += t.Amount
		}
	}
	return total, nil
}

// records, paperwork, predictions

type memRecords struct{ *memStore }

func (s memRecords) Create(_ context.Context, r *model.MedicalRecord, reward int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[r.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	r.ID = s.id("record")
	s.records = append(s.records, *r)
	s.credit(r.UserID, reward, model.CategoryMedicalRecord, "Medical record upload", r.UploadedAt)
	return nil
}

func (s memRecords) ListByUser(_ context.Context, userID string, limit int) ([]model.MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MedicalRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].UserID == userID {
			out = append(out, s.records[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPaperwork struct{ *memStore }

func (s memPaperwork) Create(_ context.Context, p *model.PaperworkTemplate, reward int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("paper")
	s.papers = append(s.papers, *p)
	s.credit(p.UserID, reward, model.CategoryPaperwork, "Paperwork generated", p.CreatedAt)
	return nil
}

func (s memPaperwork) ListByUser(_ context.Context, userID string, _ int) ([]model.PaperworkTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PaperworkTemplate
	for _, p := range s.papers {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memPredictions struct{ *memStore }

func (s memPredictions) Create(_ context.Context, p *model.HealthPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("pred")
	s.preds = append(s.preds, *p)
	return nil
}

func (s memPredictions) ListByUser(_ context.Context, userID string, _ int) ([]model.HealthPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HealthPrediction
	for _, p := range s.preds {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// care

type memMedications struct{ *memStore }

func (s memMedications) Create(_ context.Context, m *model.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id("med")
	s.meds = append(s.meds, *m)
	return nil
}

func (s memMedications) ListByUser(_ context.Context, userID string) ([]model.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Medication
	for _, m := range s.meds {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memContacts struct{ *memStore }

func (s memContacts) Create(_ context.Context, c *model.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id("contact")
	s.contacts = append(s.contacts, *c)
	return nil
}

func (s memContacts) ListByUser(_ context.Context, userID string) ([]model.EmergencyContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EmergencyContact
	for _, c := range s.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memAlerts struct{ *memStore }

func (s memAlerts) Create(_ context.Context, a *model.HealthAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id("alert")
	s.alerts = append(s.alerts, *a)
	return nil
}

func (s memAlerts) ListByUser(_ context.Context, userID string, _ int) ([]model.HealthAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HealthAlert
	for _, a := range s.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// chat

type memChats struct{ *memStore }

func (s memChats) CreateSession(_ context.Context, sess *model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.id("session")
	s.sessions[sess.ID] = *sess
	return nil
}

func (s memChats) GetSession(_ context.Context, id, userID string) (model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		return model.ChatSession{}, repository.ErrNotFound
	}
	return sess, nil
}

func (s memChats) AppendMessages(_ context.Context, sessionID string, msgs ...*model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		m.ID = s.id("msg")
		s.messages = append(s.messages, *m)
	}
	return nil
}

func (s memChats) RecentMessages(_ context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ChatMessage
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// llm and broker

// stubLLM answers with a canned completion or error and records prompts.
type stubLLM struct {
	reply string
	err   error
	users []string
}

func (s *stubLLM) Complete(_ context.Context, _, user string) (string, error) {
	s.users = append(s.users, user)
	return s.reply, s.err
}

var errLLMDown = errors.New("llm down")

type fakePublisher struct {
	events []queue.HealthAlertEvent
	err    error
}

func (p *fakePublisher) PublishHealthAlert(_ context.Context, ev queue.HealthAlertEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func fixedClock(day string) Clock {
	t, _ := time.Parse(model.DateLayout, day)
	return func() time.Time { return t.Add(9 * time.Hour) }
}
