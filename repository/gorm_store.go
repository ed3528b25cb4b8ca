package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Govind-619/JewelSphere/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Store backed by a relational database through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order, initial *models.Payment) (*models.Order, error) {
	if initial == nil || initial.RetryOfPaymentID != nil {
		return nil, ErrChainMismatch
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Payments = nil
		if err := tx.Omit("Payments").Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		initial.OrderID = order.ID
		if err := tx.Create(initial).Error; err != nil {
			return fmt.Errorf("create initial payment: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Payments = []models.Payment{*initial}
	return order, nil
}

func (s *GormStore) CreatePaymentAttempt(ctx context.Context, orderID string, payment *models.Payment) (*models.Payment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, orderID); err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrPendingAttemptExists
		}

		if payment.RetryOfPaymentID == nil {
			// only the root attempt may omit the back-reference
			return ErrChainMismatch
		}
		var parent models.Payment
		if err := tx.Select("id", "order_id").
			First(&parent, "id = ?", *payment.RetryOfPaymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChainMismatch
			}
			return err
		}
		if parent.OrderID != orderID {
			return ErrChainMismatch
		}

		payment.OrderID = orderID
		return translate(tx.Create(payment).Error)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = query.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Order("created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *GormStore) ListPaymentsForOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at, id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *GormStore) GetPaymentByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "tx_ref = ?", txRef).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, transactionID *string) (*models.Payment, error) {
	if !status.Terminal() {
		return nil, ErrInvalidStatus
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}

	db := s.db.WithContext(ctx)
	result := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	var payment models.Payment
	if err := db.First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, translate(err)
	}
	if result.RowsAffected == 0 {
		return &payment, ErrAlreadyResolved
	}
	return &payment, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetOrder(ctx, orderID)
}

// InOrderScope opens a transaction holding a row lock on the order.
func (s *GormStore) InOrderScope(ctx context.Context, orderID string, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, orderID); err != nil {
			return err
		}
		return fn(&GormStore{db: tx})
	})
}

func lockOrder(tx *gorm.DB, orderID string) error {
	var locked models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", orderID).Error
	return translate(err)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// the only unique keys on payments are tx_ref and the one-pending-per-order index
		return ErrPendingAttemptExists
	}
	return err
}
