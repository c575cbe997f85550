package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/models"
)

type nopLog struct{}

func (nopLog) Info(string, ...zap.Field) {}

type fakeKeeper struct {
	up       bool
	inserted []models.ContactMessage
	query    models.MessageQuery
	readID   int64
	err      error
	closed   bool

	files   []catalog.File
	saveErr error
	loadErr error
}

func (k *fakeKeeper) Ping(context.Context) bool { return k.up }

func (k *fakeKeeper) Close() bool {
	k.closed = true
	return true
}

func (k *fakeKeeper) InsertContactMessage(_ context.Context, m *models.ContactMessage) (int64, error) {
	if k.err != nil {
		return 0, k.err
	}
	k.inserted = append(k.inserted, *m)
	return 77, nil
}

func (k *fakeKeeper) ListContactMessages(_ context.Context, q models.MessageQuery) ([]models.ContactMessage, error) {
	k.query = q
	return k.inserted, k.err
}

func (k *fakeKeeper) MarkContactMessageRead(_ context.Context, id int64) error {
	k.readID = id
	return k.err
}

func (k *fakeKeeper) SaveCatalogFiles(_ context.Context, files []catalog.File) error {
	if k.saveErr != nil {
		return k.saveErr
	}
	k.files = files
	return nil
}

func (k *fakeKeeper) LoadCatalogFiles(context.Context) ([]catalog.File, error) {
	return k.files, k.loadErr
}

func newMemory(t *testing.T) *MemoryStorage {
	t.Helper()
	s := NewMemoryStorage(context.Background(), nil, nil, nopLog{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s
}

func TestMemoryStorage_Messages(t *testing.T) {
	ctx := context.Background()
	s := newMemory(t)

	for _, subject := range []string{"uno", "dos", "tres"} {
		msg := &models.ContactMessage{Subject: subject, IsRead: true}
		id, err := s.SaveContactMessage(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, id, msg.ID)
		assert.False(t, msg.IsRead)
	}

	all, err := s.ListContactMessages(ctx, models.MessageQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tres", all[0].Subject)
	assert.Equal(t, int64(1), all[2].ID)

	require.NoError(t, s.MarkContactMessageRead(ctx, 3))
	assert.ErrorIs(t, s.MarkContactMessageRead(ctx, 99), ErrNotFound)

	unread, err := s.ListContactMessages(ctx, models.MessageQuery{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "dos", unread[0].Subject)

	page, err := s.ListContactMessages(ctx, models.MessageQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "dos", page[0].Subject)

	past, err := s.ListContactMessages(ctx, models.MessageQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)

	assert.True(t, s.Ping(ctx))
}

func TestMemoryStorage_Keeper(t *testing.T) {
	ctx := context.Background()
	k := &fakeKeeper{up: true}
	s := NewMemoryStorage(ctx, nil, k, nopLog{})

	msg := &models.ContactMessage{Subject: "hola"}
	id, err := s.SaveContactMessage(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, int64(77), msg.ID)
	require.Len(t, k.inserted, 1)
	assert.False(t, k.inserted[0].CreatedAt.IsZero())

	_, err = s.ListContactMessages(ctx, models.MessageQuery{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, models.MessageQuery{Limit: MaxLimit}, k.query)

	require.NoError(t, s.MarkContactMessageRead(ctx, 5))
	assert.Equal(t, int64(5), k.readID)

	k.up = false
	assert.False(t, s.Ping(ctx))

	k.err = errors.New("boom")
	_, err = s.SaveContactMessage(ctx, &models.ContactMessage{})
	assert.Error(t, err)

	s.Close()
	assert.True(t, k.closed)
}

func TestMemoryStorage_ProcessCatalog(t *testing.T) {
	ctx := context.Background()
	s := newMemory(t)

	before := s.Catalog()
	assert.Len(t, before.Categories(), 2)

	resp, err := s.ProcessCatalog(ctx, []catalog.File{
		{Name: "traccion-ion-li.json", Data: []byte(`[{"modelo": "TR-1"}, {"modelo": "TR-2"}]`)},
	})
	require.NoError(t, err)
	assert.Equal(t, &models.ProcessResponse{TotalItems: 18, TotalCategories: 3}, resp)

	cat, err := s.Catalog().Category("traccion")
	require.NoError(t, err)
	assert.Len(t, cat.Products, 2)

	_, err = s.ProcessCatalog(ctx, []catalog.File{{Name: "traccion.json", Data: []byte("{")}})
	require.Error(t, err)
	_, err = s.Catalog().Category("traccion")
	assert.NoError(t, err, "a failed import keeps the served catalog")

	files, err := s.ExportCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestMemoryStorage_ImportSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	k := &fakeKeeper{up: true}
	s := NewMemoryStorage(ctx, nil, k, nopLog{})

	_, err := s.ProcessCatalog(ctx, []catalog.File{
		{Name: "traccion-ion-li.json", Data: []byte(`[{"modelo": "TR-1"}, {"modelo": "TR-2"}]`)},
	})
	require.NoError(t, err)
	require.Len(t, k.files, 1)

	restarted := NewMemoryStorage(ctx, nil, k, nopLog{})
	cat, err := restarted.Catalog().Category("traccion")
	require.NoError(t, err)
	assert.Len(t, cat.Products, 2)

	k.saveErr = errors.New("connection reset")
	_, err = restarted.ProcessCatalog(ctx, []catalog.File{{Name: "ciclado.json", Data: []byte(`[{"modelo": "CP-1"}]`)}})
	assert.ErrorIs(t, err, ErrNotSaved)
	_, err = restarted.Catalog().Category("ciclado")
	assert.ErrorIs(t, err, catalog.ErrNotFound, "an unsaved import is not served")
	_, err = restarted.Catalog().Category("traccion")
	assert.NoError(t, err)
}

func TestMemoryStorage_RestoreFallsBack(t *testing.T) {
	ctx := context.Background()
	served, err := catalog.FromFiles([]catalog.File{{Name: "ciclado.json", Data: []byte(`[{"modelo": "CP-1"}]`)}})
	require.NoError(t, err)

	t.Run("keeper error", func(t *testing.T) {
		k := &fakeKeeper{loadErr: errors.New("relation does not exist")}
		s := NewMemoryStorage(ctx, served, k, nopLog{})
		assert.Same(t, served, s.Catalog())
	})

	t.Run("nothing imported", func(t *testing.T) {
		s := NewMemoryStorage(ctx, served, &fakeKeeper{}, nopLog{})
		assert.Same(t, served, s.Catalog())
	})

	t.Run("invalid stored files", func(t *testing.T) {
		k := &fakeKeeper{files: []catalog.File{{Name: "traccion.json", Data: []byte("{")}}}
		s := NewMemoryStorage(ctx, served, k, nopLog{})
		assert.Same(t, served, s.Catalog())
	})
}
