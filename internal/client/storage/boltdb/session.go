package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/devnest/internal/client/storage"
	"github.com/iudanet/devnest/internal/models"
)

var (
	tokenKey = []byte("token")
	userKey  = []byte("user")
)

// SaveSession stores token and user in one transaction
func (s *Storage) SaveSession(ctx context.Context, sess *models.Session) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if sess == nil || sess.Token == "" {
		return fmt.Errorf("session token is empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		if err := bucket.Put(tokenKey, []byte(sess.Token)); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		// Сессия без пользователя не должна оставлять старый user
		if sess.User == nil {
			if err := bucket.Delete(userKey); err != nil {
				return fmt.Errorf("failed to delete stale user: %w", err)
			}
			return nil
		}

		data, err := json.Marshal(sess.User)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		if err := bucket.Put(userKey, data); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		return nil
	})
}

// GetSession retrieves the stored session
func (s *Storage) GetSession(ctx context.Context) (*models.Session, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var sess *models.Session

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		token := bucket.Get(tokenKey)
		if token == nil {
			return storage.ErrSessionNotFound
		}

		// bbolt значения валидны только внутри транзакции
		sess = &models.Session{Token: string(token)}

		if data := bucket.Get(userKey); data != nil {
			user := &models.UserIdentity{}
			if err := json.Unmarshal(data, user); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			sess.User = user
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sess, nil
}

// DeleteSession removes token and user
func (s *Storage) DeleteSession(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}

		if bucket.Get(tokenKey) == nil && bucket.Get(userKey) == nil {
			return storage.ErrSessionNotFound
		}

		if err := bucket.Delete(tokenKey); err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		if err := bucket.Delete(userKey); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		return nil
	})
}

// HasSession checks if a token is stored
func (s *Storage) HasSession(ctx context.Context) (bool, error) {
	_, err := s.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
