// Package db bootstraps the GORM MySQL connection.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"kline_backend/internal/feature/kline/adapters"
)

// OpenDB connects to MySQL, retrying for up to a minute so the service
// survives a database that comes up slower than the container.
// TranslateError is on so unique-key violations surface as
// gorm.ErrDuplicatedKey.
func OpenDB() *gorm.DB {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		user, pass, host, port, name)

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gmysql.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(&adapters.KlineModel{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
