package db

import (
	"fmt"
	"strings"

	"kasir/internal/config"
	"kasir/internal/domain/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return OpenPostgres(postgresDSN(cfg))
	case config.DriverSQLite:
		path := cfg.SQLitePath
		// DATABASE_URL があれば最優先で使う
		if cfg.DatabaseURL != "" {
			path = cfg.DatabaseURL
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// OpenSQLite はローカル用。書き込みが1本になるよう接続は1つに絞る。
func OpenSQLite(path string) (*gorm.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	gdb, err := gorm.Open(sqlite.Open(path+sep+"_pragma=busy_timeout(5000)"), gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return gdb, nil
}

// Migrate はテーブルを作成・更新する。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
	)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// ユニーク制約違反を gorm.ErrDuplicatedKey にする
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

func postgresDSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}
