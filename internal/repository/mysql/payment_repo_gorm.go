package mysql

import (
	"errors"

	"gorm.io/gorm"

	"appforge/internal/domain"
	"appforge/internal/repository"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) SaveIntent(intent *domain.PaymentIntent) error {
	return r.db.Create(intent).Error
}

func (r *paymentRepo) UpdateIntent(intent *domain.PaymentIntent) error {
	return r.db.Save(intent).Error
}

func (r *paymentRepo) FindIntentByID(id string) (*domain.PaymentIntent, error) {
	var pi domain.PaymentIntent
	if err := r.db.First(&pi, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pi, nil
}

func (r *paymentRepo) FindIntentsByOrder(orderID string) ([]domain.PaymentIntent, error) {
	var out []domain.PaymentIntent
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepo) FindSucceededIntentByOrder(orderID string) (*domain.PaymentIntent, error) {
	var pi domain.PaymentIntent
	err := r.db.First(&pi, "order_id = ? AND status = ?", orderID, domain.IntentSucceeded).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pi, nil
}

func (r *paymentRepo) SaveInvoice(invoice *domain.Invoice) error {
	return r.db.Create(invoice).Error
}

func (r *paymentRepo) UpdateInvoice(invoice *domain.Invoice) error {
	return r.db.Save(invoice).Error
}

func (r *paymentRepo) FindInvoiceByID(id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := r.db.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *paymentRepo) FindInvoicesByOrder(orderID string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepo) SaveRefund(refund *domain.Refund) error {
	return r.db.Create(refund).Error
}

func (r *paymentRepo) UpdateRefund(refund *domain.Refund) error {
	return r.db.Save(refund).Error
}

func (r *paymentRepo) FindRefundsByIntent(intentID string) ([]domain.Refund, error) {
	var out []domain.Refund
	err := r.db.Where("intent_id = ?", intentID).Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
