package repositories

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"amani-server/configs"
	"amani-server/internal/loggers"
	"amani-server/internal/models"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type dbs struct {
	Redis    *redis.Client
	Postgres *gorm.DB
	S3       *s3.Client
}

// DBS holds the shared connections, initialized once at startup.
var DBS dbs

func Init() {
	initRedis()
	initPostgres()
	initS3()
}

// initRedis initializes the Redis connection
func initRedis() {
	opt := &redis.Options{
		Addr:     configs.Configs.Redis.Addresses[0],
		Username: configs.Configs.Redis.Username,
		Password: configs.Configs.Redis.Password,
		DB:       configs.Configs.Redis.Database,
	}

	if configs.Configs.Redis.Tls {
		opt.TLSConfig = &tls.Config{}
	}

	DBS.Redis = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := DBS.Redis.Ping(ctx).Result()
	if err != nil {
		configs.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		return
	}

	configs.Logger.Info("Redis connected successfully", zap.String("result", result))
}

// initPostgres initializes the PostgreSQL connection
func initPostgres() {
	host, port, err := net.SplitHostPort(configs.Configs.Postgres.Address)
	if err != nil {
		configs.Logger.Fatal("Invalid Postgres address", zap.Error(err))
		return
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s",
		host,
		configs.Configs.Postgres.Username,
		configs.Configs.Postgres.Password,
		configs.Configs.Postgres.Database,
		port,
	)

	gormLogger := loggers.NewZapGormLogger(
		logger.Warn,
		200*time.Millisecond,
		true,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		configs.Logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		return
	}

	if err := autoMigrateInOrder(db); err != nil {
		configs.Logger.Fatal("Failed to migrate database", zap.Error(err))
		return
	}

	DBS.Postgres = db
	configs.Logger.Info("PostgreSQL connected successfully")
}

func autoMigrateInOrder(db *gorm.DB) error {
	// Migration order follows the FK dependency graph.
	modelsInOrder := []interface{}{
		&models.Profile{},
		&models.DonorProfile{},
		&models.CaseManagerProfile{},
		&models.Family{},
		&models.Child{},
		&models.DonorFamilyAssignment{},
		&models.CaseManagerFamilyAssignment{},
		&models.Post{},
		&models.PostMedia{},
		&models.MessageThread{},
		&models.Message{},
		&models.UpdateRequest{},
	}

	for _, model := range modelsInOrder {
		if err := db.AutoMigrate(model); err != nil {
			return err
		}
	}

	// Store-level backstop for the single-active-assignment invariant.
	// Application-level check-then-insert alone would race across sessions.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_dfa_active_pair
		 ON donor_family_assignments (donor_id, family_id)
		 WHERE status = 'active'`,
	).Error
}

func initS3() {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(configs.Configs.S3.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				configs.Configs.S3.AccessKey,
				configs.Configs.S3.SecretKey,
				"",
			),
		),
	)
	if err != nil {
		configs.Logger.Fatal("Failed to load AWS S3 configuration", zap.Error(err))
		return
	}

	DBS.S3 = s3.NewFromConfig(cfg)
	configs.Logger.Info("S3 client initialized successfully")
}
