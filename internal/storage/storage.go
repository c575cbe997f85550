package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/models"
)

var (
	// ErrNotFound is returned for unknown contact message ids.
	ErrNotFound = errors.New("not found")
	// ErrNotSaved wraps failures to persist an imported catalog.
	ErrNotSaved = errors.New("catalog could not be saved")
)

// Message listing bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Log interface {
	Info(string, ...zap.Field)
}

// MemoryStorage serves the current catalog and keeps contact messages.
// Messages go to the keeper when one is configured and stay in memory otherwise.
type MemoryStorage struct {
	catalog atomic.Pointer[catalog.Catalog]

	mx       sync.RWMutex
	messages []models.ContactMessage
	lastID   int64
	now      func() time.Time

	keeper Keeper
	log    Log
}

// Keeper interface for database operations
type Keeper interface {
	Ping(context.Context) bool
	Close() bool
	InsertContactMessage(context.Context, *models.ContactMessage) (int64, error)
	ListContactMessages(context.Context, models.MessageQuery) ([]models.ContactMessage, error)
	MarkContactMessageRead(context.Context, int64) error
	SaveCatalogFiles(context.Context, []catalog.File) error
	LoadCatalogFiles(context.Context) ([]catalog.File, error)
}

// NewMemoryStorage creates a new MemoryStorage instance
func NewMemoryStorage(ctx context.Context, cat *catalog.Catalog, keeper Keeper, log Log) *MemoryStorage {
	s := &MemoryStorage{
		now:    time.Now,
		keeper: keeper,
		log:    log,
	}
	if cat == nil {
		cat = catalog.New(catalog.Builtin()...)
	}
	if keeper != nil {
		if imported := restoreCatalog(ctx, keeper, log); imported != nil {
			cat = imported
		}
	}
	s.catalog.Store(cat)

	stats := cat.Stats()
	log.Info("catalog loaded",
		zap.Int("categories", stats.TotalCategories),
		zap.Int("products", stats.TotalItems),
		zap.Bool("database", keeper != nil))

	if keeper != nil && !keeper.Ping(ctx) {
		log.Info("database is not reachable yet")
	}
	return s
}

// restoreCatalog rebuilds the last imported catalog saved by the keeper.
// It returns nil when there is none or it cannot be read.
func restoreCatalog(ctx context.Context, keeper Keeper, log Log) *catalog.Catalog {
	files, err := keeper.LoadCatalogFiles(ctx)
	if err != nil {
		log.Info("imported catalog is not available, serving data files", zap.Error(err))
		return nil
	}
	if len(files) == 0 {
		return nil
	}
	cat, err := catalog.FromFiles(files)
	if err != nil {
		log.Info("imported catalog is invalid, serving data files", zap.Error(err))
		return nil
	}
	log.Info("imported catalog restored", zap.Int("files", len(files)))
	return cat
}

// Catalog returns the catalog currently served.
func (s *MemoryStorage) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// ProcessCatalog rebuilds the catalog from data files, saves them through the
// keeper and swaps the catalog in. The served catalog is left untouched when a
// file is invalid or cannot be saved.
func (s *MemoryStorage) ProcessCatalog(ctx context.Context, files []catalog.File) (*models.ProcessResponse, error) {
	cat, err := catalog.FromFiles(files)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	if s.keeper != nil {
		if err := s.keeper.SaveCatalogFiles(ctx, files); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotSaved, err)
		}
	}
	s.catalog.Store(cat)

	resp := cat.Stats()
	s.log.Info("catalog replaced",
		zap.Int("files", len(files)),
		zap.Int("categories", resp.TotalCategories),
		zap.Int("products", resp.TotalItems))
	return resp, nil
}

// ExportCatalog renders the current catalog as consolidated data files.
func (s *MemoryStorage) ExportCatalog(context.Context) ([]catalog.File, error) {
	return s.Catalog().Export()
}

// SaveContactMessage stores a message and returns its id.
func (s *MemoryStorage) SaveContactMessage(ctx context.Context, msg *models.ContactMessage) (int64, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	msg.IsRead = false

	if s.keeper != nil {
		id, err := s.keeper.InsertContactMessage(ctx, msg)
		if err != nil {
			return 0, err
		}
		msg.ID = id
		return id, nil
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	s.lastID++
	msg.ID = s.lastID
	s.messages = append(s.messages, *msg)
	return msg.ID, nil
}

// ListContactMessages returns messages newest first.
func (s *MemoryStorage) ListContactMessages(ctx context.Context, q models.MessageQuery) ([]models.ContactMessage, error) {
	q = normalizeQuery(q)
	if s.keeper != nil {
		return s.keeper.ListContactMessages(ctx, q)
	}

	s.mx.RLock()
	defer s.mx.RUnlock()

	out := make([]models.ContactMessage, 0, len(s.messages))
	for _, m := range s.messages {
		if q.UnreadOnly && m.IsRead {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if q.Offset >= len(out) {
		return []models.ContactMessage{}, nil
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// MarkContactMessageRead flags a message as read.
func (s *MemoryStorage) MarkContactMessageRead(ctx context.Context, id int64) error {
	if s.keeper != nil {
		return s.keeper.MarkContactMessageRead(ctx, id)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

// Ping reports whether the database is reachable. Without a database it is always true.
func (s *MemoryStorage) Ping(ctx context.Context) bool {
	if s.keeper == nil {
		return true
	}
	return s.keeper.Ping(ctx)
}

// Close releases the keeper.
func (s *MemoryStorage) Close() {
	if s.keeper != nil {
		s.keeper.Close()
	}
}

func normalizeQuery(q models.MessageQuery) models.MessageQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
