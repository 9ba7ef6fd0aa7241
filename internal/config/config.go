package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `envconfig:"PORT" default:"8080"` // サーバーポート

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite / postgres
	DatabaseURL string `envconfig:"DATABASE_URL"`               // あれば最優先
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"cashier.db"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"kasir"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	ReceiptDir string `envconfig:"RECEIPT_DIR" default:"receipts"` // レシート保存先
	TaxPercent string `envconfig:"TAX_PERCENT" default:"11"`       // 税率（%）。不正なら0扱い
	SeedSample bool   `envconfig:"SEED_SAMPLE" default:"true"`     // サンプル商品を入れるか

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	GoEnv    string `envconfig:"GO_ENV" default:"dev"` // dev/prod
}

// Loadは .env を読んでから環境変数を構造体に詰める。
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be number: %w", err)
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" && c.DatabaseURL == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" && c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverSQLite, DriverPostgres)
	}

	if c.ReceiptDir == "" {
		return fmt.Errorf("RECEIPT_DIR is required")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// Addr は echo に渡すlisten アドレス
func (c Config) Addr() string {
	return ":" + c.Port
}
