package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"appforge/internal/domain"
)

// Open connects and migrates every table the repositories use.
func Open(user, pass, host, port, dbname string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbname)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&domain.Order{},
		&domain.StatusChange{},
		&domain.GeneratedApp{},
		&domain.PaymentIntent{},
		&domain.Invoice{},
		&domain.Refund{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
