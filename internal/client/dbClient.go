package client

import (
	"log"
	"time"

	"novella-shop/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitMysqlClient(databaseURL string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Perfume{},
		&model.Capacity{},
		&model.PerfumeCapacity{},
		&model.Sample{},
		&model.Gift{},
		&model.PromoCode{},
		&model.User{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderSample{},
		&model.OrderGift{},
		&model.WebhookEvent{},
		&model.EmailJob{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
