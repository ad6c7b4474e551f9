// Package session keeps independent trained premium predictors keyed by id.
package session

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/model"
	"github.com/mchmarny/healsure/pkg/premium"
	"github.com/mchmarny/healsure/pkg/wellness"
	"github.com/pkg/errors"
)

// ErrNotFound is returned for ids that were never created or were deleted.
var ErrNotFound = errors.New("session not found")

// Session owns one predictor. Retraining swaps its state atomically.
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	predictor *model.Predictor
	estimator *premium.Estimator
}

// Predictor returns the session's predictor handle.
func (s *Session) Predictor() *model.Predictor {
	return s.predictor
}

// Quote estimates a discounted premium with the session's current model.
func (s *Session) Quote(a insurance.Applicant, in wellness.Inputs) (*premium.Quote, error) {
	return s.estimator.Estimate(a, in)
}

// Manager creates, trains and removes sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	source   dataset.Source
	opts     model.Options
}

// NewManager returns a manager that trains every session on tables from src.
func NewManager(src dataset.Source, opts model.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		source:   src,
		opts:     opts,
	}
}

// Create trains a new session. The session is registered only when the
// initial training succeeds.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	p := model.NewPredictor(m.opts)
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		predictor: p,
		estimator: premium.NewEstimator(p),
	}

	if _, err := m.train(ctx, s); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Debug("session created", "id", s.ID)
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id: %s", id)
	}
	return s, nil
}

// Retrain reloads the training table and fits a fresh model for the session.
// On failure the session keeps serving its previous model.
func (m *Manager) Retrain(ctx context.Context, id string) (*model.State, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return m.train(ctx, s)
}

func (m *Manager) train(ctx context.Context, s *Session) (*model.State, error) {
	if m.source == nil {
		return nil, errors.New("training source not configured")
	}

	table, err := m.source.TrainingTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load training table")
	}

	start := time.Now()
	st, err := s.predictor.Train(ctx, table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to train session %s", s.ID)
	}

	slog.Debug("session trained",
		"id", s.ID,
		"rows", len(table),
		"r2", st.Metrics().R2,
		"duration", time.Since(start))
	return st, nil
}

// Delete removes the session with id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return errors.Wrapf(ErrNotFound, "id: %s", id)
	}
	delete(m.sessions, id)
	return nil
}

// List returns the live sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list
}
