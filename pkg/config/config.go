package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Ledger       LedgerConfig
	Booking      BookingConfig
	Settings     SettingsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SEASONDECOR_APP_ENV" required:"true"`
	Port         string `envconfig:"SEASONDECOR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SEASONDECOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SEASONDECOR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SEASONDECOR_DB_DSN"`
	Driver string `envconfig:"SEASONDECOR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SEASONDECOR_DB_HOST"`
	LegacyPort     int    `envconfig:"SEASONDECOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SEASONDECOR_DB_USER"`
	LegacyPassword string `envconfig:"SEASONDECOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"SEASONDECOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"SEASONDECOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SEASONDECOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SEASONDECOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SEASONDECOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SEASONDECOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SEASONDECOR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SEASONDECOR_REDIS_ADDR"`
	Password     string        `envconfig:"SEASONDECOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"SEASONDECOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SEASONDECOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SEASONDECOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SEASONDECOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SEASONDECOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SEASONDECOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// LedgerConfig bounds wallet operations.
type LedgerConfig struct {
	// OperationTimeout caps how long a single ledger transaction may hold locks.
	OperationTimeout time.Duration `envconfig:"SEASONDECOR_LEDGER_OPERATION_TIMEOUT" default:"10s"`
	// TopUpUnitScale converts gateway top-up units into wallet currency.
	TopUpUnitScale int64 `envconfig:"SEASONDECOR_LEDGER_TOPUP_UNIT_SCALE" default:"1000"`
	// PlatformAccountID is the admin account whose wallet receives commission
	// and funds refunds.
	PlatformAccountID uuid.UUID `envconfig:"SEASONDECOR_LEDGER_PLATFORM_ACCOUNT_ID"`
}

// BookingConfig carries booking-flow policy knobs.
type BookingConfig struct {
	// MaxActiveBookingsPerAddress limits concurrent non-terminal bookings per
	// address. Zero disables the check.
	MaxActiveBookingsPerAddress int `envconfig:"SEASONDECOR_BOOKING_MAX_ACTIVE_PER_ADDRESS" default:"0"`
}

// SettingsConfig tunes the platform-settings provider.
type SettingsConfig struct {
	CommissionRateCacheTTL time.Duration `envconfig:"SEASONDECOR_SETTINGS_COMMISSION_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SEASONDECOR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SEASONDECOR_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
