package database

import (
	"fmt"
	"log"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// AutoMigrate 建表；test_results 上的 (candidate_id, test_id) 唯一索引防止并发重复提交
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Job{},
		&model.Application{},
		&model.TestDefinition{},
		&model.TestQuestion{},
		&model.TestResult{},
		&model.TestAnswer{},
		&model.Interview{},
		&model.InterviewReminder{},
		&model.Notification{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
