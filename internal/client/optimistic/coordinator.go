// Package optimistic applies boolean toggles (like, follow) locally before the
// server confirms them and reverts on failure.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout ограничивает удаленный вызов
const DefaultTimeout = 10 * time.Second

// ErrInFlight для этого ключа уже выполняется переключение
var ErrInFlight = errors.New("toggle already in flight")

// State флаг и счетчик, которые меняются только вместе
type State struct {
	Flag  bool
	Count int
}

// Toggled возвращает состояние после переключения
func (s State) Toggled() State {
	if s.Flag {
		return State{Flag: false, Count: s.Count - 1}
	}
	return State{Flag: true, Count: s.Count + 1}
}

// Target локальная сущность (пост, профиль)
type Target interface {
	Load() State
	Store(State)
}

// RemoteFunc выполняет вызов, соответствующий next.Flag.
// Возвращает авторитетный счетчик, если сервер его прислал.
type RemoteFunc func(ctx context.Context, next State) (*int, error)

// Coordinator сериализует переключения по ключу
type Coordinator[K comparable] struct {
	logger   *slog.Logger
	inflight map[K]struct{}
	timeout  time.Duration
	mu       sync.Mutex
}

// NewCoordinator создает координатор. timeout <= 0 означает DefaultTimeout.
func NewCoordinator[K comparable](timeout time.Duration, logger *slog.Logger) *Coordinator[K] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator[K]{
		logger:   logger,
		inflight: make(map[K]struct{}),
		timeout:  timeout,
	}
}

// InFlight сообщает, выполняется ли переключение для key
func (c *Coordinator[K]) InFlight(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

// Toggle применяет переключение оптимистично и вызывает remote.
// При ошибке восстанавливается ровно предыдущее состояние.
func (c *Coordinator[K]) Toggle(ctx context.Context, key K, target Target, remote RemoteFunc) (State, error) {
	if !c.acquire(key) {
		return target.Load(), ErrInFlight
	}
	defer c.release(key)

	prev := target.Load()
	next := prev.Toggled()
	target.Store(next)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	count, err := remote(callCtx, next)
	if err != nil {
		target.Store(prev)
		c.logger.Warn("optimistic toggle reverted",
			slog.Any("key", key),
			slog.Bool("flag", prev.Flag),
			slog.Int("count", prev.Count),
			slog.Any("error", err))
		return prev, fmt.Errorf("toggle failed: %w", err)
	}

	// Серверу доверяем больше, чем локальной арифметике
	if count != nil {
		next.Count = *count
		target.Store(next)
	}

	return next, nil
}

func (c *Coordinator[K]) acquire(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[key]; ok {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Coordinator[K]) release(key K) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}
