package mysql

import (
	"errors"

	"gorm.io/gorm"

	"appforge/internal/domain"
	"appforge/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(order *domain.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) Update(order *domain.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepo) FindByID(id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) FindAll() ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) AppendStatusChange(change *domain.StatusChange) error {
	return r.db.Create(change).Error
}

func (r *orderRepo) HistoryByOrder(orderID string) ([]domain.StatusChange, error) {
	var out []domain.StatusChange
	err := r.db.Where("order_id = ?", orderID).Order("at ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) SaveGeneratedApp(app *domain.GeneratedApp) error {
	return r.db.Create(app).Error
}

func (r *orderRepo) FindGeneratedApp(orderID string) (*domain.GeneratedApp, error) {
	var app domain.GeneratedApp
	if err := r.db.First(&app, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}
