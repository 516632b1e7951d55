package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

// Service owns the forum's gorm connection.
type Service interface {
	// Health pings the database and reports pool and schema state under
	// string keys; "status" is "up" or "down".
	Health(ctx context.Context) map[string]string
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db     *gorm.DB
	driver string
}

// New opens the configured database and brings its schema up to date.
// Postgres is migrated with the embedded SQL migrations; sqlite, used for
// local runs and tests, is auto-migrated from the models.
func New(conf config.Database) (Service, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel(conf.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch conf.Driver {
	case "postgres":
		if err := Migrate(conf.DSN()); err != nil {
			return nil, err
		}
		dialector = postgres.Open(conf.DSN())
	case "sqlite":
		dialector = sqlite.Open(conf.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if conf.Driver == "sqlite" {
		// One connection keeps in-memory databases alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)

		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("enable foreign_keys: %w", err)
		}
		if err := db.AutoMigrate(
			&models.User{},
			&models.Thread{},
			&models.Reply{},
			&models.Vote{},
		); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("[DATABASE] sqlite schema migrated")
	} else {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}

	log.Printf("[DATABASE] connected (%s)", conf.Driver)

	return &service{db: db, driver: conf.Driver}, nil
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

const healthTimeout = 3 * time.Second

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	report := map[string]string{"driver": s.driver}
	down := func(err error) map[string]string {
		report["status"] = "down"
		report["error"] = err.Error()
		return report
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return down(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return down(fmt.Errorf("ping: %w", err))
	}

	if s.driver == "postgres" {
		var m struct {
			Version int64
			Dirty   bool
		}
		err := s.db.WithContext(ctx).Raw("SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&m).Error
		if err != nil {
			return down(fmt.Errorf("schema version: %w", err))
		}
		if m.Dirty {
			return down(fmt.Errorf("migration %d is dirty", m.Version))
		}
		report["schema_version"] = strconv.FormatInt(m.Version, 10)
	}

	pool := sqlDB.Stats()
	report["status"] = "up"
	report["open_connections"] = strconv.Itoa(pool.OpenConnections)
	report["in_use"] = strconv.Itoa(pool.InUse)
	report["wait_count"] = strconv.FormatInt(pool.WaitCount, 10)
	return report
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	log.Printf("[DATABASE] disconnected (%s)", s.driver)
	return sqlDB.Close()
}
