// Package repository defines the storage contracts injected into the
// services. Implementations: mysql (gorm) for production, memory for tests
// and DB-less operation.
package repository

import "appforge/internal/domain"

// Not-found semantics: Find* return (nil, nil) when the row does not
// exist; the services map that to their own sentinel errors.

type OrderRepository interface {
	Save(order *domain.Order) error
	Update(order *domain.Order) error
	FindByID(id string) (*domain.Order, error)
	FindByUser(userID string) ([]domain.Order, error)
	FindAll() ([]domain.Order, error)

	AppendStatusChange(change *domain.StatusChange) error
	HistoryByOrder(orderID string) ([]domain.StatusChange, error)

	SaveGeneratedApp(app *domain.GeneratedApp) error
	FindGeneratedApp(orderID string) (*domain.GeneratedApp, error)
}

type PaymentRepository interface {
	SaveIntent(intent *domain.PaymentIntent) error
	UpdateIntent(intent *domain.PaymentIntent) error
	FindIntentByID(id string) (*domain.PaymentIntent, error)
	FindIntentsByOrder(orderID string) ([]domain.PaymentIntent, error)
	FindSucceededIntentByOrder(orderID string) (*domain.PaymentIntent, error)

	SaveInvoice(invoice *domain.Invoice) error
	UpdateInvoice(invoice *domain.Invoice) error
	FindInvoiceByID(id string) (*domain.Invoice, error)
	FindInvoicesByOrder(orderID string) ([]domain.Invoice, error)

	SaveRefund(refund *domain.Refund) error
	UpdateRefund(refund *domain.Refund) error
	FindRefundsByIntent(intentID string) ([]domain.Refund, error)
}
