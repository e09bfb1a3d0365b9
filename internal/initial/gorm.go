package initial

import (
	"fmt"
	"log"
	"os"
	"time"

	"ChatEduca/internal/config"
	adminEntity "ChatEduca/internal/modules/admin/domain/entity"
	chatEntity "ChatEduca/internal/modules/chat/domain/entity"
	parentEntity "ChatEduca/internal/modules/parent/domain/entity"
	userEntity "ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens the configured driver. The caller owns CloseDatabase.
func OpenDatabase(conf config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(conf)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if conf.Driver == "sqlite" {
		// one writer; also keeps ":memory:" databases on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		if conf.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
		}
		if conf.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

func dialectorFor(conf config.DatabaseConfig) (gorm.Dialector, error) {
	switch conf.Driver {
	case "mysql", "":
		dsn := conf.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				conf.User, conf.Password, conf.Host, conf.Port, conf.DatabaseName)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := conf.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				conf.Host, conf.Port, conf.User, conf.Password, conf.DatabaseName)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := conf.DSN
		if dsn == "" {
			dsn = "chateduca.db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

// AutoMigrate creates or updates the tables this service owns. chat_memory
// belongs to the RAG service and is only created when legacy is set.
func AutoMigrate(db *gorm.DB, legacy bool) error {
	models := []interface{}{
		&userEntity.User{},
		&userEntity.ParentStudent{},
		&chatEntity.Session{},
		&chatEntity.Message{},
		&adminEntity.Log{},
	}
	if legacy {
		models = append(models, &parentEntity.ChatMemory{})
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		zlog.Warn("close database", zap.Error(err))
	}
}
