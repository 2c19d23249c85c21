package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL       = "localhost:3001"
	defaultUploadDir     = "uploads"
	defaultTTL           = 24 * time.Hour
	defaultSweepInterval = time.Minute
	defaultMaxUploadMB   = 10
	defaultCORSOrigin    = "*"
)

type Config struct {
	// Server-side settings
	UploadDir     string        `env:"UPLOAD_DIR"`
	ItemTTL       time.Duration `env:"ITEM_TTL"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
	MaxUploadMB   int           `env:"MAX_UPLOAD_MB"`
	CORSOrigin    string        `env:"CORS_ORIGIN"`
	LogJSON       bool          `env:"LOG_JSON"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	Version      bool   `env:"-"` // show client version and exit (flag only)
}

// MaxUploadBytes — лимит размера одного файла в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги переопределяют env; значение из env служит значением по умолчанию
	// Server flags
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "каталог для файлов")
	flag.DurationVar(&cfg.ItemTTL, "ttl", cfg.ItemTTL, "время жизни записи")
	flag.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "период фоновой очистки")
	flag.IntVar(&cfg.MaxUploadMB, "max-upload-mb", cfg.MaxUploadMB, "максимальный размер файла, MiB")
	flag.StringVar(&cfg.CORSOrigin, "cors-origin", cfg.CORSOrigin, "значение Access-Control-Allow-Origin")
	flag.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "JSON-логи (production encoder)")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the TempShare server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite history DB")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)

func (cfg *Config) applyDefaults() {
	// BaseURL: только "address:port" (без схемы и пути), иначе значение по умолчанию
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = defaultUploadDir
	}
	if cfg.ItemTTL <= 0 {
		cfg.ItemTTL = defaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = defaultCORSOrigin
	}

	if cfg.ClientDBPath == "" {
		home, _ := os.UserHomeDir()
		cfg.ClientDBPath = filepath.Join(home, "tscli.db")
	}
}
