package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/devnest/internal/client/api"
	"github.com/iudanet/devnest/internal/client/storage"
	"github.com/iudanet/devnest/internal/models"
)

// Manager единственное место, которое пишет и удаляет сессию.
// Пишет только Establish, удаляют только Clear и Invalidate.
type Manager struct {
	storage    storage.SessionStorage
	reconciler *Reconciler
	logger     *slog.Logger
	current    *models.Session
	mu         sync.RWMutex
}

// NewManager создает менеджер сессии
func NewManager(st storage.SessionStorage, rec *Reconciler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rec == nil {
		rec = NewReconciler(logger)
	}
	return &Manager{
		storage:    st,
		reconciler: rec,
		logger:     logger,
	}
}

// Load читает сессию из хранилища. Возвращает ErrNoSession если ее нет.
func (m *Manager) Load(ctx context.Context) (*models.Session, error) {
	sess, err := m.storage.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			m.set(nil)
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	m.set(sess)
	return clone(sess), nil
}

// Establish разбирает ответ аутентификации и полностью перезаписывает сессию.
// При ErrMissingToken хранилище не трогается.
func (m *Manager) Establish(ctx context.Context, data []byte) (*models.Session, error) {
	raw, err := ParseRawAuthResponse(data)
	if err != nil {
		return nil, err
	}

	sess, err := m.reconciler.Reconcile(raw)
	if err != nil {
		return nil, err
	}

	if err := m.storage.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	m.set(sess)
	return clone(sess), nil
}

// Clear удаляет сессию (logout).
// Память очищается только после удаления из хранилища, чтобы они не расходились.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.storage.DeleteSession(ctx); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.set(nil)
	return nil
}

// Invalidate очищает сессию если err это 401 и возвращает ErrSessionExpired.
// Остальные ошибки возвращаются как есть.
func (m *Manager) Invalidate(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	m.logger.Warn("server rejected session token, clearing local session")
	if clearErr := m.Clear(ctx); clearErr != nil {
		m.logger.Error("failed to clear session", slog.Any("error", clearErr))
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, err)
}

// Current возвращает копию текущей сессии или nil
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.current)
}

// Token возвращает текущий токен. Реализует api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) set(sess *models.Session) {
	m.mu.Lock()
	m.current = clone(sess)
	m.mu.Unlock()
}

func clone(sess *models.Session) *models.Session {
	if sess == nil {
		return nil
	}
	out := &models.Session{Token: sess.Token}
	if sess.User != nil {
		u := *sess.User
		out.User = &u
	}
	return out
}
