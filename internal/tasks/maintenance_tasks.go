package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// ReconcileSessionsTaskDef refreshes every local session row from the
// WhatsApp server. Scheduled as a recurring task; the safety net behind the
// per-user sync-on-read.
type ReconcileSessionsTaskDef struct {
	Subscriptions *services.SubscriptionService
}

// TaskID returns the unique identifier for this task
func (t *ReconcileSessionsTaskDef) TaskID() string {
	return models.TaskReconcileSessions
}

// HandleExecution runs one full reconciliation pass
func (t *ReconcileSessionsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	if t.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service not configured")
	}

	updated, err := t.Subscriptions.ReconcileAll(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf("[Task: reconcile_sessions] %d sessions updated", updated)
	return map[string]interface{}{
		"status":  "success",
		"updated": updated,
	}, nil
}

// ReconcileSessionsTask is the singleton instance of ReconcileSessionsTaskDef
var ReconcileSessionsTask = &ReconcileSessionsTaskDef{}

// ExpireTransactionsTaskDef closes orders whose payment window lapsed, along
// with their still-pending payments. Scheduled as a recurring task.
type ExpireTransactionsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *ExpireTransactionsTaskDef) TaskID() string {
	return models.TaskExpireTransactions
}

// HandleExecution expires overdue orders in one pass
func (t *ExpireTransactionsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	now := time.Now()
	var expiredCount, paymentCount int64

	err := db.Transaction(func(tx *gorm.DB) error {
		var overdue []models.Transaction
		if err := tx.Where("status IN ? AND expires_at < ?",
			[]models.TransactionStatus{models.TransactionStatusCreated, models.TransactionStatusPending},
			now).Find(&overdue).Error; err != nil {
			return err
		}
		if len(overdue) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(overdue))
		for _, tr := range overdue {
			ids = append(ids, tr.ID)
		}

		result := tx.Model(&models.Transaction{}).
			Where("id IN ?", ids).
			Update("status", models.TransactionStatusExpired)
		if result.Error != nil {
			return result.Error
		}
		expiredCount = result.RowsAffected

		result = tx.Model(&models.Payment{}).
			Where("transaction_id IN ? AND status = ?", ids, models.PaymentStatusPending).
			Update("status", models.PaymentStatusExpired)
		if result.Error != nil {
			return result.Error
		}
		paymentCount = result.RowsAffected

		return nil
	})
	if err != nil {
		return nil, err
	}

	if expiredCount > 0 {
		log.Printf("[Task: expire_transactions] expired %d transactions, %d payments", expiredCount, paymentCount)
	}

	return map[string]interface{}{
		"status":               "success",
		"expired_transactions": expiredCount,
		"expired_payments":     paymentCount,
	}, nil
}

// ExpireTransactionsTask is the singleton instance of ExpireTransactionsTaskDef
var ExpireTransactionsTask = &ExpireTransactionsTaskDef{}
