package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
)

var (
	// ErrTransactionInvalid covers not found / expired / wrong status.
	// Handlers surface it with the TRANSACTION_INVALID code.
	ErrTransactionInvalid = errors.New("transaction cannot be paid")

	// ErrPendingPaymentExists enforces at most one active payment per
	// transaction. The partial unique index on payments is the hard
	// guarantee; this error is the friendly pre-check.
	ErrPendingPaymentExists = errors.New("a pending payment already exists for this transaction")

	ErrMethodUnavailable = errors.New("payment method not found or inactive")
)

// Each DB transaction in the orchestration runs under this budget so a slow
// statement cannot hold row locks while concurrent checkouts pile up.
const dbTxTimeout = 5 * time.Second

// PaymentService orchestrates payment creation and settlement. The gateway
// call happens outside any database transaction: network I/O must never hold
// a DB transaction open.
type PaymentService struct {
	db       *gorm.DB
	gateways map[models.PaymentGatewayProvider]Gateway
}

func NewPaymentService(db *gorm.DB, duitku *DuitkuService, midtrans *MidtransService) *PaymentService {
	return &PaymentService{
		db: db,
		gateways: map[models.PaymentGatewayProvider]Gateway{
			models.GatewayProviderDuitku:   duitku,
			models.GatewayProviderMidtrans: midtrans,
		},
	}
}

// Pricing is the amount breakdown echoed back to the client
type Pricing struct {
	Amount             float64 `json:"amount"`
	DiscountAmount     float64 `json:"discount_amount"`
	TotalAfterDiscount float64 `json:"total_after_discount"`
	ServiceFee         float64 `json:"service_fee"`
	FinalAmount        float64 `json:"final_amount"`
	Currency           string  `json:"currency"`
}

// CreatePaymentResult is what the payment-create endpoint returns
type CreatePaymentResult struct {
	Payment     models.Payment     `json:"payment"`
	Transaction models.Transaction `json:"transaction"`
	Pricing     Pricing            `json:"pricing"`
	ZeroPrice   bool               `json:"zero_price"`
}

// CreatePayment runs the payment-creation sequence for one order:
// validate ownership and payable status, compute the fee, short-circuit
// zero-price manual orders, call the gateway, persist the result, and
// enqueue the customer notification. Two short DB transactions bracket the
// gateway call.
func (s *PaymentService) CreatePayment(ctx context.Context, userID uint, transactionID uint, methodCode string) (*CreatePaymentResult, error) {
	var (
		transaction models.Transaction
		cfg         models.PaymentMethodConfig
	)

	// First transaction: validate and snapshot everything we need.
	txCtx, cancel := context.WithTimeout(ctx, dbTxTimeout)
	defer cancel()

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("User").
			Where("id = ? AND user_id = ?", transactionID, userID).
			First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: not found", ErrTransactionInvalid)
			}
			return err
		}

		if !transaction.IsPayable() {
			return fmt.Errorf("%w: status is %s", ErrTransactionInvalid, transaction.Status)
		}
		if transaction.IsExpired(time.Now()) {
			return fmt.Errorf("%w: payment window has expired", ErrTransactionInvalid)
		}

		var pendingCount int64
		if err := tx.Model(&models.Payment{}).
			Where("transaction_id = ? AND status = ?", transaction.ID, models.PaymentStatusPending).
			Count(&pendingCount).Error; err != nil {
			return err
		}
		if pendingCount > 0 {
			return ErrPendingPaymentExists
		}

		if err := tx.Where("code = ? AND is_active = ?", methodCode, true).
			First(&cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMethodUnavailable
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	base := transaction.TotalAfterDiscount
	fee := CalculateServiceFee(base, cfg)
	final := Round2(base + fee)

	pricing := Pricing{
		Amount:             transaction.Amount,
		DiscountAmount:     transaction.DiscountAmount,
		TotalAfterDiscount: base,
		ServiceFee:         fee,
		FinalAmount:        final,
		Currency:           transaction.Currency,
	}

	// Zero-price shortcut: nothing to collect, settle immediately and let the
	// worker provision the service.
	if final == 0 && !cfg.IsGateway {
		result, err := s.settleZeroPrice(ctx, &transaction, cfg, pricing)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	orderID := fmt.Sprintf("order-%d-%d", transaction.ID, time.Now().Unix())

	// Gateway call outside any DB transaction.
	var gwResult *GatewayCreateResult
	if cfg.IsGateway {
		gateway, ok := s.gateways[cfg.GatewayProvider]
		if !ok {
			return nil, ErrMethodUnavailable
		}

		productName := "WhatsApp package"
		if len(transaction.Items) > 0 {
			productName = transaction.Items[0].PackageName
		}

		gwResult, err = gateway.CreatePayment(ctx, GatewayCreateRequest{
			OrderID:     orderID,
			Amount:      final,
			Currency:    transaction.Currency,
			ChannelCode: cfg.GatewayChannelCode,
			ProductName: productName,
			Customer: GatewayCustomer{
				Name:  transaction.User.Name,
				Email: transaction.User.Email,
				Phone: transaction.User.Phone,
			},
			ExpiresIn: 24 * time.Hour,
		})
		if err != nil {
			return nil, err
		}
	} else {
		// Manual methods never hit the network: a 24-hour window for the
		// customer to transfer and an admin to confirm.
		gwResult = &GatewayCreateResult{ExpiresAt: time.Now().Add(24 * time.Hour)}
	}

	payment := models.Payment{
		TransactionID:   transaction.ID,
		OrderID:         orderID,
		Amount:          final,
		Method:          cfg.Code,
		Status:          models.PaymentStatusPending,
		ServiceFee:      fee,
		ExpiresAt:       gwResult.ExpiresAt,
		ExternalID:      gwResult.ExternalID,
		PaymentURL:      gwResult.PaymentURL,
		Provider:        cfg.GatewayProvider,
		GatewayRequest:  gwResult.RawRequest,
		GatewayResponse: gwResult.RawResponse,
	}

	// Second transaction: persist the payment and updated pricing.
	txCtx2, cancel2 := context.WithTimeout(ctx, dbTxTimeout)
	defer cancel2()

	err = s.db.WithContext(txCtx2).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":             models.TransactionStatusPending,
			"service_fee_amount": fee,
			"final_amount":       final,
		}
		if err := tx.Model(&transaction).Updates(updates).Error; err != nil {
			return err
		}

		if transaction.VoucherID != nil && transaction.Status == models.TransactionStatusCreated {
			if err := ConsumeVoucher(tx, *transaction.VoucherID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	transaction.Status = models.TransactionStatusPending
	transaction.ServiceFeeAmount = fee
	transaction.FinalAmount = final

	// Best-effort confirmation message; failures are the worker's problem.
	s.enqueueNotification(transaction.UserID, transaction.ID, payment.ID)

	return &CreatePaymentResult{
		Payment:     payment,
		Transaction: transaction,
		Pricing:     pricing,
	}, nil
}

// settleZeroPrice marks a fully discounted manual order as paid without any
// gateway involvement.
func (s *PaymentService) settleZeroPrice(ctx context.Context, transaction *models.Transaction, cfg models.PaymentMethodConfig, pricing Pricing) (*CreatePaymentResult, error) {
	now := time.Now()
	payment := models.Payment{
		TransactionID: transaction.ID,
		OrderID:       fmt.Sprintf("order-%d-%d", transaction.ID, now.Unix()),
		Amount:        0,
		Method:        cfg.Code,
		Status:        models.PaymentStatusPaid,
		ServiceFee:    0,
		Provider:      models.GatewayProviderManual,
		PaymentDate:   &now,
	}

	txCtx, cancel := context.WithTimeout(ctx, dbTxTimeout)
	defer cancel()

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":             models.TransactionStatusInProgress,
			"service_fee_amount": 0.0,
			"final_amount":       0.0,
		}
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return err
		}

		if transaction.VoucherID != nil {
			if err := ConsumeVoucher(tx, *transaction.VoucherID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	transaction.Status = models.TransactionStatusInProgress
	transaction.ServiceFeeAmount = 0
	transaction.FinalAmount = 0

	// Provisioning happens off the request path
	s.enqueueActivation(transaction.ID)
	s.enqueueNotification(transaction.UserID, transaction.ID, payment.ID)

	return &CreatePaymentResult{
		Payment:     payment,
		Transaction: *transaction,
		Pricing:     pricing,
		ZeroPrice:   true,
	}, nil
}

// SettlePayment idempotently marks a payment as paid and moves its
// transaction to in_progress. Shared by gateway callbacks and admin manual
// approval. Settling an already-paid payment is a no-op.
func (s *PaymentService) SettlePayment(ctx context.Context, paymentID uint) error {
	txCtx, cancel := context.WithTimeout(ctx, dbTxTimeout)
	defer cancel()

	var settled bool
	var payment models.Payment

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}
		if payment.Status == models.PaymentStatusPaid {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"status":       models.PaymentStatusPaid,
			"payment_date": &now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", payment.TransactionID).
			Update("status", models.TransactionStatusInProgress).Error; err != nil {
			return err
		}

		settled = true
		return nil
	})
	if err != nil {
		return err
	}

	if settled {
		var transaction models.Transaction
		if err := s.db.First(&transaction, payment.TransactionID).Error; err == nil {
			s.enqueueActivation(transaction.ID)
			s.enqueueNotification(transaction.UserID, transaction.ID, payment.ID)
		}
	}

	return nil
}

// MarkPaymentFailed flips a pending payment (and its transaction) to a
// terminal failure state from a gateway rejection or expiry notification.
func (s *PaymentService) MarkPaymentFailed(ctx context.Context, paymentID uint, status models.PaymentStatus) error {
	txCtx, cancel := context.WithTimeout(ctx, dbTxTimeout)
	defer cancel()

	return s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}
		// Terminal states never regress
		if payment.Status != models.PaymentStatusPending {
			return nil
		}

		if err := tx.Model(&payment).Update("status", status).Error; err != nil {
			return err
		}

		// The order itself stays payable: the customer may retry with a
		// different method until the transaction window expires.
		return tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", payment.TransactionID, models.TransactionStatusPending).
			Update("status", models.TransactionStatusCreated).Error
	})
}

// FindPaymentByOrderID resolves a gateway merchant order id to our payment.
func (s *PaymentService) FindPaymentByOrderID(orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) enqueueActivation(transactionID uint) {
	task := models.ScheduledTask{
		TaskName:   models.TaskActivateService,
		Arguments:  map[string]interface{}{"transaction_id": float64(transactionID)},
		Due:        time.Now(),
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
	}
	if err := s.db.Create(&task).Error; err != nil {
		log.Printf("Failed to enqueue activation for transaction %d: %v", transactionID, err)
	}
}

func (s *PaymentService) enqueueNotification(userID, transactionID, paymentID uint) {
	task := models.ScheduledTask{
		TaskName: models.TaskSendOrderNotification,
		Arguments: map[string]interface{}{
			"user_id":        float64(userID),
			"transaction_id": float64(transactionID),
			"payment_id":     float64(paymentID),
		},
		Due:        time.Now(),
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
	}
	if err := s.db.Create(&task).Error; err != nil {
		log.Printf("Failed to enqueue notification for transaction %d: %v", transactionID, err)
	}
}
