package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/services/repositories"
	"github.com/demodeck-hq/demodeck_api/shared"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string

	userRepo *repositories.UserRepository
	demoRepo *repositories.DemoRepository
	linkRepo *repositories.ShareLinkRepository
	viewRepo *repositories.ViewRepository
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "postgres")
		dbname := getEnv("DB_NAME", "demodeck")
		sslmode := getEnv("DB_SSLMODE", "disable")
		timezone := getEnv("DB_TIMEZONE", "UTC")

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err := ds.db.AutoMigrate(Models()...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	ds.userRepo = repositories.NewUserRepository(ds.db)
	ds.demoRepo = repositories.NewDemoRepository(ds.db)
	ds.linkRepo = repositories.NewShareLinkRepository(ds.db)
	ds.viewRepo = repositories.NewViewRepository(ds.db)

	log.Println("Database connected and migrated successfully")
	return nil
}

// Models lists everything AutoMigrate manages. Shared with test
// fixtures so schemas stay in sync.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Demo{},
		&model.DemoStep{},
		&model.ShareLink{},
		&model.DemoView{},
	}
}

func (ds *PostgresService) Users() *repositories.UserRepository {
	return ds.userRepo
}

func (ds *PostgresService) Demos() *repositories.DemoRepository {
	return ds.demoRepo
}

func (ds *PostgresService) ShareLinks() *repositories.ShareLinkRepository {
	return ds.linkRepo
}

func (ds *PostgresService) Views() *repositories.ViewRepository {
	return ds.viewRepo
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// HandleError maps gorm errors onto the AppError taxonomy.
func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := shared.GetAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewAppError(http.StatusNotFound, err, "Not Found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewAppError(http.StatusConflict, err, "Already exists")
	default:
		return shared.NewInternalError(err, "Database error")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
