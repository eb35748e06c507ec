package mapping

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "finstmt/internal/errors"
	"finstmt/pkg/contracts/domain"
)

// Store persists mapping templates. Implementations must treat delete as a
// soft IsActive=false: statements keep referencing their template forever.
type Store interface {
	// Save validates and stores the template. Re-saving an existing ID
	// bumps its version.
	Save(ctx context.Context, t *domain.MappingTemplate) error
	// Get returns the template by ID, active or not.
	Get(ctx context.Context, id uuid.UUID) (*domain.MappingTemplate, error)
	// Default returns the active default template for a company and
	// statement type, falling back to the most recently used active one.
	Default(ctx context.Context, companyID uuid.UUID, st domain.StatementType) (*domain.MappingTemplate, error)
	// Touch records a successful use of the template.
	Touch(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	// Deactivate soft-deletes the template.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// MemoryStore is the in-process Store used by tests and the CLI. Safe for
// concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*domain.MappingTemplate
}

// NewMemoryStore creates an empty in-memory template store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{templates: make(map[uuid.UUID]*domain.MappingTemplate)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, t *domain.MappingTemplate) error {
	if err := Validate(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneTemplate(t)
	if existing, ok := s.templates[t.ID]; ok {
		// Usage bookkeeping belongs to Touch; a re-save must not reset it
		// even when the caller edits a stale copy.
		cp.Version = existing.Version + 1
		cp.UsageCount = existing.UsageCount
		cp.LastUsedAt = existing.LastUsedAt
	} else if cp.Version == 0 {
		cp.Version = 1
	}
	// A saved template has been confirmed by definition.
	cp.NeedsConfirmation = false
	cp.MissingRoles = nil
	s.templates[t.ID] = cp
	t.Version = cp.Version
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*domain.MappingTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, apperrors.NewTemplateNotFoundError(id.String())
	}
	return cloneTemplate(t), nil
}

// Default implements Store.
func (s *MemoryStore) Default(_ context.Context, companyID uuid.UUID, st domain.StatementType) (*domain.MappingTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*domain.MappingTemplate
	for _, t := range s.templates {
		if t.CompanyID == companyID && t.StatementType == st && t.IsActive {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewTemplateNotFoundError(
			"default for company " + companyID.String() + " type " + string(st))
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].IsDefault != candidates[j].IsDefault {
			return candidates[i].IsDefault
		}
		return candidates[i].LastUsedAt.After(candidates[j].LastUsedAt)
	})
	return cloneTemplate(candidates[0]), nil
}

// Touch implements Store.
func (s *MemoryStore) Touch(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return apperrors.NewTemplateNotFoundError(id.String())
	}
	t.UsageCount++
	t.LastUsedAt = usedAt
	return nil
}

// Deactivate implements Store.
func (s *MemoryStore) Deactivate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return apperrors.NewTemplateNotFoundError(id.String())
	}
	t.IsActive = false
	return nil
}

func cloneTemplate(t *domain.MappingTemplate) *domain.MappingTemplate {
	cp := *t
	cp.ConceptColumns = append([]domain.ConceptColumn(nil), t.ConceptColumns...)
	cp.PeriodColumns = append([]domain.PeriodColumn(nil), t.PeriodColumns...)
	cp.MissingRoles = append([]string(nil), t.MissingRoles...)
	if t.FixedRowMap != nil {
		cp.FixedRowMap = make(map[string]int, len(t.FixedRowMap))
		for k, v := range t.FixedRowMap {
			cp.FixedRowMap[k] = v
		}
	}
	return &cp
}
