package shared

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	DBConnectAttempts int
	DBConnectDelay    time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	RabbitURL string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	AuthRateRPS   float64
	AuthRateBurst int
	CORSOrigins   []string
	// TrustProxy honours X-Forwarded-For / X-Real-IP; enable only behind
	// a proxy that overwrites them.
	TrustProxy bool

	SeedOnStart   bool
	SeedWorkers   int
	AdminEmail    string
	AdminPassword string
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads the environment (and a .env file when present). Local-development
// defaults exist for everything except the token signing secret.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	c := Config{
		AppEnv:            env("APP_ENV", "dev"),
		HTTPAddr:          ":" + env("PORT", "5000"),
		DBHost:            env("DB_HOST", "localhost"),
		DBPort:            env("DB_PORT", "3306"),
		DBName:            env("DB_NAME", "hotel"),
		DBUser:            env("DB_USER", "root"),
		DBPass:            os.Getenv("DB_PASS"),
		DBConnectAttempts: atoi("DB_CONNECT_ATTEMPTS", 10),
		DBConnectDelay:    dur("DB_CONNECT_DELAY", 5*time.Second),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisDB:           atoi("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RabbitURL:         os.Getenv("RABBITMQ_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          dur("TOKEN_TTL", 24*time.Hour),
		BcryptCost:        atoi("BCRYPT_COST", 10),
		AuthRateRPS:       atof("AUTH_RATE_LIMIT_RPS", 5),
		AuthRateBurst:     atoi("AUTH_RATE_LIMIT_BURST", 10),
		CORSOrigins:       list("CORS_ORIGINS", "*"),
		TrustProxy:        env("TRUST_PROXY", "false") == "true",
		SeedOnStart:       env("SEED_ON_START", "true") == "true",
		SeedWorkers:       atoi("SEED_WORKERS", 4),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}
	if c.JWTSecret == "" {
		return c, ErrMissingSecret
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty; query cache disabled")
	}
	return c, nil
}

// MySQLDSN renders the driver DSN. parseTime maps DATE/DATETIME to time.Time.
func (c Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func dur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func list(k, def string) []string {
	var out []string
	for _, p := range strings.Split(env(k, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
