package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// SendOrderNotificationTaskDef delivers order and payment confirmations over
// the customer's preferred channel. Absent a preference row, WhatsApp wins:
// the number is already verified.
type SendOrderNotificationTaskDef struct {
	WhatsApp *services.WhatsAppService
	Email    *services.EmailService
}

// TaskID returns the unique identifier for this task
func (t *SendOrderNotificationTaskDef) TaskID() string {
	return models.TaskSendOrderNotification
}

// HandleExecution sends one order notification
func (t *SendOrderNotificationTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	userID, err := uintArg(task.Arguments, "user_id")
	if err != nil {
		return nil, err
	}
	transactionID, err := uintArg(task.Arguments, "transaction_id")
	if err != nil {
		return nil, err
	}
	paymentID, err := uintArg(task.Arguments, "payment_id")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	var transaction models.Transaction
	if err := db.Preload("Items").First(&transaction, transactionID).Error; err != nil {
		return nil, fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}

	var payment models.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment %d: %w", paymentID, err)
	}

	channel := models.NotificationChannelWhatsapp
	var pref models.NotificationPreference
	err = db.Where("user_id = ?", userID).First(&pref).Error
	switch {
	case err == nil:
		channel = pref.Channel
	case errors.Is(err, gorm.ErrRecordNotFound):
		// default channel stands
	default:
		return nil, fmt.Errorf("failed to load notification preference: %w", err)
	}

	switch channel {
	case models.NotificationChannelNone:
		log.Printf("Notifications disabled for user %d, skipping", userID)
		return map[string]interface{}{"status": "skipped"}, nil
	case models.NotificationChannelEmail:
		if user.Email == "" {
			return map[string]interface{}{"status": "skipped", "reason": "no email on file"}, nil
		}
		subject, body := composeOrderEmail(user, transaction, payment)
		if err := t.Email.SendEmail([]string{user.Email}, subject, body); err != nil {
			return nil, fmt.Errorf("email delivery failed: %w", err)
		}
	default:
		msg := composeOrderMessage(user, transaction, payment)
		if err := t.WhatsApp.SendMessage(ctx, user.Phone, msg); err != nil {
			return nil, fmt.Errorf("whatsapp delivery failed: %w", err)
		}
	}

	return map[string]interface{}{
		"status":  "success",
		"channel": string(channel),
	}, nil
}

func composeOrderMessage(user models.User, transaction models.Transaction, payment models.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s,\n\n", user.Name)

	switch payment.Status {
	case models.PaymentStatusPaid:
		fmt.Fprintf(&b, "Pembayaran pesanan #%d sebesar Rp%.0f telah kami terima. Layanan Anda sedang diaktifkan.\n", transaction.ID, payment.Amount)
	default:
		fmt.Fprintf(&b, "Pesanan #%d menunggu pembayaran sebesar Rp%.0f.\n", transaction.ID, payment.Amount)
		if payment.PaymentURL != "" {
			fmt.Fprintf(&b, "Bayar di sini: %s\n", payment.PaymentURL)
		}
		if !payment.ExpiresAt.IsZero() {
			fmt.Fprintf(&b, "Batas waktu pembayaran: %s\n", payment.ExpiresAt.Format("02 Jan 2006 15:04"))
		}
	}

	for _, item := range transaction.Items {
		fmt.Fprintf(&b, "\n- %s x%d", item.PackageName, item.Quantity)
	}
	b.WriteString("\n\nTerima kasih.")
	return b.String()
}

func composeOrderEmail(user models.User, transaction models.Transaction, payment models.Payment) (string, string) {
	subject := fmt.Sprintf("Pesanan #%d", transaction.ID)
	if payment.Status == models.PaymentStatusPaid {
		subject = fmt.Sprintf("Pembayaran pesanan #%d diterima", transaction.ID)
	}
	return subject, composeOrderMessage(user, transaction, payment)
}

// SendOrderNotificationTask is the singleton instance of SendOrderNotificationTaskDef
var SendOrderNotificationTask = &SendOrderNotificationTaskDef{}
