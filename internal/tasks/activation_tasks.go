package tasks

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// ActivateServiceTaskDef provisions the subscription a settled transaction
// paid for. Enqueued by payment settlement; running it again for an already
// provisioned transaction is a no-op.
type ActivateServiceTaskDef struct {
	Subscriptions *services.SubscriptionService
}

// TaskID returns the unique identifier for this task
func (t *ActivateServiceTaskDef) TaskID() string {
	return models.TaskActivateService
}

// HandleExecution activates or extends the subscription for one transaction
func (t *ActivateServiceTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	transactionID, err := uintArg(task.Arguments, "transaction_id")
	if err != nil {
		return nil, err
	}

	if t.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service not configured")
	}

	if err := t.Subscriptions.ActivateFromTransaction(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("activation failed: %w", err)
	}

	return map[string]interface{}{
		"status":         "success",
		"transaction_id": transactionID,
	}, nil
}

// ActivateServiceTask is the singleton instance of ActivateServiceTaskDef
var ActivateServiceTask = &ActivateServiceTaskDef{}
