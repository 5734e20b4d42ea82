package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/danielhkuo/signwise/phash"
)

type Config struct {
	Port               int
	DatabaseURL        string
	DatabaseType       string
	InferenceURL       string
	InferenceTimeout   time.Duration
	DuplicateThreshold int
	HashBits           int
	MaxUploadBytes     int64
	IPHashSalt         string
	SeedSigns          bool
}

const (
	defaultPort           = 3318
	defaultInferenceURL   = "http://localhost:8000"
	defaultTimeout        = 30 * time.Second
	defaultMaxUploadBytes = 10 << 20
)

// ParseFlags parses CLI flags, falling back to environment variables and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("signwise", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.InferenceURL, "inference-url", "", "YOLO inference service base URL")
	fs.DurationVar(&cfg.InferenceTimeout, "inference-timeout", 0, "Timeout for inference requests")

	// Duplicate detection
	fs.IntVar(&cfg.DuplicateThreshold, "threshold", -1, "Max Hamming distance counted as duplicate")
	fs.IntVar(&cfg.HashBits, "hash-bits", 0, "Perceptual hash width in bits")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", 0, "Max upload size in bytes")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	fs.BoolVar(&cfg.SeedSigns, "seed", false, "Seed the sign catalogue on startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", defaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.InferenceURL == "" {
		cfg.InferenceURL = os.Getenv("YOLO_SERVICE_URL")
		if cfg.InferenceURL == "" {
			cfg.InferenceURL = defaultInferenceURL
		}
	}
	if cfg.InferenceTimeout == 0 {
		if s := os.Getenv("YOLO_TIMEOUT"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid YOLO_TIMEOUT env variable")
			}
			cfg.InferenceTimeout = d
		} else {
			cfg.InferenceTimeout = defaultTimeout
		}
	}

	if cfg.DuplicateThreshold < 0 {
		threshold, err := envInt("DUPLICATE_THRESHOLD", phash.DefaultThreshold)
		if err != nil {
			return Config{}, err
		}
		cfg.DuplicateThreshold = threshold
	}
	if cfg.HashBits == 0 {
		bits, err := envInt("HASH_BITS", phash.DefaultBits)
		if err != nil {
			return Config{}, err
		}
		cfg.HashBits = bits
	}
	if _, err := phash.NewDetector(cfg.DuplicateThreshold, cfg.HashBits); err != nil {
		return Config{}, err
	}

	if cfg.MaxUploadBytes == 0 {
		maxUpload, err := envInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxUploadBytes = int64(maxUpload)
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.New("max upload size must be positive")
	}

	if !cfg.SeedSigns {
		cfg.SeedSigns = os.Getenv("SEED_SIGNS") == "true"
	}

	// Secrets - MUST be provided
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
