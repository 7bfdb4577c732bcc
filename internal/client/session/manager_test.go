package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devnest/internal/client/api"
	"github.com/iudanet/devnest/internal/client/storage"
	"github.com/iudanet/devnest/internal/client/storage/boltdb"
	"github.com/iudanet/devnest/internal/logging"
	"github.com/iudanet/devnest/internal/models"
)

// mockSessionStorage хранит сессию в памяти и считает записи
type mockSessionStorage struct {
	sess      *models.Session
	saveErr   error
	deleteErr error
	mu      sync.Mutex
	saves   int
	deletes int
}

func (m *mockSessionStorage) SaveSession(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *s
	m.sess = &cp
	return nil
}

func (m *mockSessionStorage) GetSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, storage.ErrSessionNotFound
	}
	cp := *m.sess
	return &cp, nil
}

func (m *mockSessionStorage) DeleteSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.sess == nil {
		return storage.ErrSessionNotFound
	}
	m.sess = nil
	return nil
}

func (m *mockSessionStorage) HasSession(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess != nil, nil
}

func TestManager_EstablishAndLoad(t *testing.T) {
	ctx := context.Background()
	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := NewManager(store, nil, logging.Discard())

	sess, err := m.Establish(ctx, []byte(`{"token":"t1","user":{"id":"u1","username":"alice"}}`))
	require.NoError(t, err)
	assert.Equal(t, "t1", sess.Token)
	assert.Equal(t, "t1", m.Token())
	require.NotNil(t, m.Current())
	assert.Equal(t, "alice", m.Current().User.Username)

	// Новый менеджер поверх того же хранилища восстанавливает сессию
	m2 := NewManager(store, nil, logging.Discard())
	assert.Empty(t, m2.Token())
	loaded, err := m2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)
	assert.Equal(t, "t1", m2.Token())
}

func TestManager_EstablishOverwrites(t *testing.T) {
	ctx := context.Background()
	st := &mockSessionStorage{}
	m := NewManager(st, nil, logging.Discard())

	_, err := m.Establish(ctx, []byte(`{"token":"t1","user":{"id":"u1","username":"alice"}}`))
	require.NoError(t, err)

	_, err = m.Establish(ctx, []byte(`{"token":"t2"}`))
	require.NoError(t, err)

	got, err := st.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Token)
	assert.Nil(t, got.User)
	assert.Equal(t, 2, st.saves)
}

func TestManager_EstablishMissingTokenNoWrite(t *testing.T) {
	ctx := context.Background()
	st := &mockSessionStorage{}
	m := NewManager(st, nil, logging.Discard())

	for _, body := range []string{`{"user":{"id":"1"}}`, `not json`, ``} {
		sess, err := m.Establish(ctx, []byte(body))
		assert.ErrorIs(t, err, ErrMissingToken)
		assert.Nil(t, sess)
	}

	assert.Equal(t, 0, st.saves)
	assert.Nil(t, m.Current())
}

func TestManager_EstablishSaveError(t *testing.T) {
	st := &mockSessionStorage{saveErr: errors.New("disk full")}
	m := NewManager(st, nil, logging.Discard())

	_, err := m.Establish(context.Background(), []byte(`{"token":"t"}`))
	require.Error(t, err)
	assert.Empty(t, m.Token())
}

func TestManager_LoadNoSession(t *testing.T) {
	m := NewManager(&mockSessionStorage{}, nil, logging.Discard())
	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Nil(t, m.Current())
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	st := &mockSessionStorage{}
	m := NewManager(st, nil, logging.Discard())

	_, err := m.Establish(ctx, []byte(`{"token":"t1"}`))
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx))
	assert.Empty(t, m.Token())
	ok, _ := st.HasSession(ctx)
	assert.False(t, ok)

	// Повторный Clear без сессии не ошибка
	assert.NoError(t, m.Clear(ctx))
}

func TestManager_ClearStorageErrorKeepsSession(t *testing.T) {
	ctx := context.Background()
	st := &mockSessionStorage{}
	m := NewManager(st, nil, logging.Discard())

	_, err := m.Establish(ctx, []byte(`{"token":"t1"}`))
	require.NoError(t, err)

	st.deleteErr = errors.New("disk full")
	err = m.Clear(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// память совпадает с хранилищем: токен все еще на диске
	assert.Equal(t, "t1", m.Token())
	ok, _ := st.HasSession(ctx)
	assert.True(t, ok)

	st.deleteErr = nil
	require.NoError(t, m.Clear(ctx))
	assert.Empty(t, m.Token())
}

func TestManager_Invalidate(t *testing.T) {
	ctx := context.Background()
	st := &mockSessionStorage{}
	m := NewManager(st, nil, logging.Discard())

	_, err := m.Establish(ctx, []byte(`{"token":"t1"}`))
	require.NoError(t, err)

	// Не 401 пропускается как есть, сессия остается
	netErr := fmt.Errorf("get feed: %w", api.ErrNetwork)
	assert.Equal(t, netErr, m.Invalidate(ctx, netErr))
	assert.Equal(t, "t1", m.Token())

	assert.NoError(t, m.Invalidate(ctx, nil))

	unauthorized := fmt.Errorf("get feed: %w", &api.APIError{StatusCode: 401, Message: "expired"})
	err = m.Invalidate(ctx, unauthorized)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, m.Token())
	assert.Nil(t, st.sess)
}

func TestManager_CurrentIsCopy(t *testing.T) {
	m := NewManager(&mockSessionStorage{}, nil, logging.Discard())
	_, err := m.Establish(context.Background(), []byte(`{"token":"t","user":{"id":"1","username":"a"}}`))
	require.NoError(t, err)

	cur := m.Current()
	cur.User.Username = "mutated"
	assert.Equal(t, "a", m.Current().User.Username)
}
