package mapping

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "finstmt/internal/errors"
	"finstmt/pkg/contracts/domain"
)

// FileStore persists templates as a single JSON file under a data
// directory. It wraps a MemoryStore for reads and rewrites the file on
// every mutation; template counts are small enough that this is the
// simplest durable option without a database.
type FileStore struct {
	mu     sync.Mutex
	path   string
	mem    *MemoryStore
	logger *slog.Logger
}

// NewFileStore loads (or creates) the template file at path.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs := &FileStore{path: path, mem: NewMemoryStore(), logger: logger}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperrors.NewStorageError("failed to read template file", err)
	}

	var templates []*domain.MappingTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return apperrors.NewStorageError("failed to decode template file", err)
	}
	for _, t := range templates {
		s.mem.templates[t.ID] = t
	}

	s.logger.Info("templates loaded",
		slog.String("path", s.path),
		slog.Int("count", len(templates)))
	return nil
}

func (s *FileStore) flush() error {
	s.mem.mu.RLock()
	templates := make([]*domain.MappingTemplate, 0, len(s.mem.templates))
	for _, t := range s.mem.templates {
		templates = append(templates, t)
	}
	s.mem.mu.RUnlock()

	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode templates", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create template directory", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return apperrors.NewStorageError("failed to write template file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.NewStorageError("failed to replace template file", err)
	}
	return nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, t *domain.MappingTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Save(ctx, t); err != nil {
		return err
	}
	return s.flush()
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, id uuid.UUID) (*domain.MappingTemplate, error) {
	return s.mem.Get(ctx, id)
}

// Default implements Store.
func (s *FileStore) Default(ctx context.Context, companyID uuid.UUID, st domain.StatementType) (*domain.MappingTemplate, error) {
	return s.mem.Default(ctx, companyID, st)
}

// Touch implements Store.
func (s *FileStore) Touch(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Touch(ctx, id, usedAt); err != nil {
		return err
	}
	return s.flush()
}

// Deactivate implements Store.
func (s *FileStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Deactivate(ctx, id); err != nil {
		return err
	}
	return s.flush()
}
