package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
)

var (
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrSessionQuotaReached  = errors.New("session quota reached for this subscription")
	ErrSessionNotFound      = errors.New("session not found")
)

// How long a synced session snapshot is considered fresh. Within this bound
// reads are served from the local mirror without contacting the WhatsApp
// server.
const sessionSyncStaleness = 60 * time.Second

// SubscriptionService manages package entitlements and the WhatsApp session
// slots claimed against them. The external WhatsApp server is the source of
// truth for connection state; local rows are a bounded-staleness mirror.
type SubscriptionService struct {
	db       *gorm.DB
	cache    *RedisCache
	whatsapp *WhatsAppService
}

func NewSubscriptionService(db *gorm.DB, cache *RedisCache, whatsapp *WhatsAppService) *SubscriptionService {
	return &SubscriptionService{db: db, cache: cache, whatsapp: whatsapp}
}

// ActiveSubscription returns the user's usable subscription, lazily marking
// it expired when the entitlement window has passed.
func (s *SubscriptionService) ActiveSubscription(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("expires_at desc").Preload("Package").First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}

	if !sub.IsUsable(time.Now()) {
		s.db.Model(&sub).Update("status", models.SubscriptionStatusExpired)
		return nil, ErrNoActiveSubscription
	}

	return &sub, nil
}

// ActivateFromTransaction provisions (or extends) the subscription a settled
// transaction paid for, then marks the transaction fully paid. Called from
// the worker, never from the request path.
func (s *SubscriptionService) ActivateFromTransaction(ctx context.Context, transactionID uint) error {
	var transaction models.Transaction
	if err := s.db.Preload("Items.Package").First(&transaction, transactionID).Error; err != nil {
		return fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}

	if transaction.Status == models.TransactionStatusPaid {
		return nil // already provisioned
	}
	if transaction.Status != models.TransactionStatusInProgress {
		return fmt.Errorf("transaction %d not ready for activation (status %s)", transactionID, transaction.Status)
	}
	if len(transaction.Items) == 0 {
		return fmt.Errorf("transaction %d has no items", transactionID)
	}

	item := transaction.Items[0]
	pkg := item.Package
	duration := time.Duration(pkg.DurationDays*item.Quantity) * 24 * time.Hour

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Subscription
		err := tx.Where("user_id = ? AND package_id = ? AND status = ?",
			transaction.UserID, pkg.ID, models.SubscriptionStatusActive).
			First(&existing).Error

		switch {
		case err == nil:
			// Same package bought again: extend the entitlement window
			base := existing.ExpiresAt
			if base.Before(time.Now()) {
				base = time.Now()
			}
			if err := tx.Model(&existing).Update("expires_at", base.Add(duration)).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub := models.Subscription{
				UserID:        transaction.UserID,
				PackageID:     pkg.ID,
				TransactionID: transaction.ID,
				MaxSessions:   pkg.MaxSessions,
				ExpiresAt:     time.Now().Add(duration),
				Status:        models.SubscriptionStatusActive,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Model(&transaction).Update("status", models.TransactionStatusPaid).Error
	})
}

// CreateSession claims a session slot against the user's subscription and
// starts it on the WhatsApp server.
func (s *SubscriptionService) CreateSession(ctx context.Context, userID uint) (*models.WhatsAppSession, error) {
	sub, err := s.ActiveSubscription(userID)
	if err != nil {
		return nil, err
	}

	var used int64
	if err := s.db.Model(&models.WhatsAppSession{}).
		Where("subscription_id = ?", sub.ID).Count(&used).Error; err != nil {
		return nil, err
	}
	if used >= int64(sub.MaxSessions) {
		return nil, ErrSessionQuotaReached
	}

	name := fmt.Sprintf("wa-%d-%s", userID, strings.Split(uuid.NewString(), "-")[0])
	if err := s.whatsapp.StartSession(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to start session on server: %w", err)
	}

	session := models.WhatsAppSession{
		SubscriptionID:   sub.ID,
		UserID:           userID,
		SessionName:      name,
		ConnectionStatus: models.SessionStatusStarting,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

// ListSessions returns the user's sessions, refreshing the mirror from the
// WhatsApp server when the last sync is older than the staleness bound.
func (s *SubscriptionService) ListSessions(ctx context.Context, userID uint) ([]models.WhatsAppSession, error) {
	syncKey := fmt.Sprintf("session_sync:%d", userID)

	fresh, err := s.cache.Exists(ctx, syncKey)
	if err != nil {
		// Redis trouble degrades to a stale read, not a failure
		log.Printf("Failed to check session sync marker: %v", err)
		fresh = true
	}

	if !fresh {
		if err := s.syncUserSessions(ctx, userID); err != nil {
			log.Printf("Session sync failed for user %d, serving stale data: %v", userID, err)
		} else {
			_ = s.cache.Set(ctx, syncKey, time.Now().Unix(), sessionSyncStaleness)
		}
	}

	var sessions []models.WhatsAppSession
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// StopSession disconnects a session on the server without releasing the slot.
func (s *SubscriptionService) StopSession(ctx context.Context, userID, sessionID uint) error {
	var session models.WhatsAppSession
	if err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := s.whatsapp.StopSession(ctx, session.SessionName); err != nil {
		return fmt.Errorf("failed to stop session on server: %w", err)
	}

	return s.db.Model(&session).Update("connection_status", models.SessionStatusStopped).Error
}

// DeleteSession stops and removes a session on the server, then releases the
// local slot.
func (s *SubscriptionService) DeleteSession(ctx context.Context, userID, sessionID uint) error {
	var session models.WhatsAppSession
	if err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := s.whatsapp.DeleteSession(ctx, session.SessionName); err != nil {
		return fmt.Errorf("failed to delete session on server: %w", err)
	}

	return s.db.Delete(&session).Error
}

// syncUserSessions refreshes one user's session rows from the server.
func (s *SubscriptionService) syncUserSessions(ctx context.Context, userID uint) error {
	var sessions []models.WhatsAppSession
	if err := s.db.Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		return err
	}

	for i := range sessions {
		remote, err := s.whatsapp.SessionStatus(ctx, sessions[i].SessionName)
		if err != nil {
			// The server no longer knows this session
			s.db.Model(&sessions[i]).Update("connection_status", models.SessionStatusStopped)
			continue
		}
		s.applyRemoteState(&sessions[i], remote)
	}

	return nil
}

// ReconcileAll walks every non-deleted session and refreshes it from the
// server. Run as a recurring worker task; this is the safety net behind the
// per-user sync-on-read.
func (s *SubscriptionService) ReconcileAll(ctx context.Context) (int, error) {
	remotes, err := s.whatsapp.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list server sessions: %w", err)
	}

	byName := make(map[string]*RemoteSession, len(remotes))
	for i := range remotes {
		byName[remotes[i].Name] = &remotes[i]
	}

	var sessions []models.WhatsAppSession
	if err := s.db.Find(&sessions).Error; err != nil {
		return 0, err
	}

	updated := 0
	for i := range sessions {
		remote, ok := byName[sessions[i].SessionName]
		if !ok {
			if sessions[i].ConnectionStatus != models.SessionStatusStopped {
				s.db.Model(&sessions[i]).Update("connection_status", models.SessionStatusStopped)
				updated++
			}
			continue
		}
		if s.applyRemoteState(&sessions[i], remote) {
			updated++
		}
	}

	return updated, nil
}

// applyRemoteState writes the server's view into a local row. Returns true
// when anything changed.
func (s *SubscriptionService) applyRemoteState(session *models.WhatsAppSession, remote *RemoteSession) bool {
	status := models.SessionConnectionStatus(remote.Status)
	now := time.Now()

	changed := session.ConnectionStatus != status ||
		session.PhoneNumber != remote.PhoneNumber ||
		session.MessagesSent != remote.SentCount

	session.ConnectionStatus = status
	session.PhoneNumber = remote.PhoneNumber
	session.MessagesSent = remote.SentCount
	session.LastSyncedAt = &now

	if err := s.db.Model(session).Updates(map[string]interface{}{
		"connection_status": status,
		"phone_number":      remote.PhoneNumber,
		"messages_sent":     remote.SentCount,
		"last_synced_at":    &now,
	}).Error; err != nil {
		log.Printf("Failed to persist session %s state: %v", session.SessionName, err)
		return false
	}

	return changed
}
