package session

import (
	"errors"
	"log/slog"

	"github.com/iudanet/devnest/internal/models"
)

// Reconciler приводит разнородные ответы аутентификации к models.Session
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler создает Reconciler
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{logger: logger}
}

// Resolution результат разбора личности
type Resolution struct {
	User  *models.UserIdentity
	Err   error // ErrMalformedTokenPayload, не фатальна
	Shape Shape
}

// ResolveIdentity прогоняет стратегии по порядку и возвращает первую личность
func ResolveIdentity(raw RawAuthResponse, token string) Resolution {
	res := Resolution{Shape: Classify(raw)}
	for _, s := range strategies {
		user, err := s.resolve(raw, token)
		if err != nil {
			res.Err = err
			continue
		}
		if user != nil {
			res.User = user
			res.Shape = s.shape
			return res
		}
	}
	return res
}

// Reconcile возвращает сессию или ErrMissingToken.
// Если личность получить не удалось, возвращается сессия только с токеном.
func (r *Reconciler) Reconcile(raw RawAuthResponse) (*models.Session, error) {
	token, err := ExtractToken(raw)
	if err != nil {
		return nil, err
	}

	res := ResolveIdentity(raw, token)
	if res.Err != nil && errors.Is(res.Err, ErrMalformedTokenPayload) {
		r.logger.Warn("token payload could not be decoded, continuing without profile",
			slog.String("shape", res.Shape.String()),
			slog.Any("error", res.Err))
	}

	if res.User == nil {
		r.logger.Warn("auth response carries no user identity, session is degraded",
			slog.String("shape", res.Shape.String()))
	} else {
		r.logger.Debug("session reconciled",
			slog.String("shape", res.Shape.String()),
			slog.String("user_id", res.User.ID))
	}

	return &models.Session{Token: token, User: res.User}, nil
}
