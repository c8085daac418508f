package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/jobworker/pkg/errors"
)

const (
	// MaxPageSize is the largest page the search API accepts
	MaxPageSize = 100

	SinkTelegram = "telegram"
	SinkRedis    = "redis"

	StrategyCookie = "cookie"
	StrategyHeader = "header"
	StrategyHTTP   = "http"
)

// Config represents the application configuration
type Config struct {
	// Search API
	SearchAPIURL        string
	SearchOperation     string
	SearchKeywords      string
	SearchLocale        string
	SearchCountry       string
	SearchPageSize      int
	PrivateSchedule     []string
	ConsolidateSchedule bool
	JobDetailURL        string
	RequestTimeout      time.Duration

	// Token acquisition
	TokenStrategy   string
	TokenPageURL    string
	TokenMarker     string
	TokenAttempts   int
	TokenRetryDelay time.Duration
	BrowserTimeout  time.Duration
	BrowserSettle   time.Duration
	ChromePath      string

	// Scheduling
	PollInterval  time.Duration
	RetryBackoff  time.Duration
	CycleTimeout  time.Duration
	RateLimitTime time.Duration

	// Notification sinks
	NotifySinks      []string
	TelegramAPIURL   string
	TelegramBotToken string
	TelegramChatID   string
	AnnounceStartup  bool

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration; empty means in-process cache
	MemcacheAddr string

	// Liveness endpoint
	Port string

	ErrorLogFile string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		SearchAPIURL:        getEnv("SEARCH_API_URL", "https://qy64m4juabaffl7tjakii4gdoa.appsync-api.eu-west-1.amazonaws.com/graphql"),
		SearchOperation:     getEnv("SEARCH_OPERATION", "searchJobCardsByLocation"),
		SearchKeywords:      getEnv("SEARCH_KEYWORDS", "Warehouse Operative"),
		SearchLocale:        getEnv("SEARCH_LOCALE", "en-GB"),
		SearchCountry:       getEnv("SEARCH_COUNTRY", "United Kingdom"),
		SearchPageSize:      getEnvInt("SEARCH_PAGE_SIZE", 20),
		PrivateSchedule:     getEnvList("SEARCH_PRIVATE_SCHEDULE", []string{"true", "false"}),
		ConsolidateSchedule: getEnvBool("SEARCH_CONSOLIDATE_SCHEDULE", true),
		JobDetailURL:        getEnv("JOB_DETAIL_URL", "https://www.jobsatamazon.co.uk/app#/jobDetail/"),
		RequestTimeout:      getEnvSeconds("REQUEST_TIMEOUT_SECONDS", 30),

		TokenStrategy:   strings.ToLower(getEnv("TOKEN_STRATEGY", StrategyCookie)),
		TokenPageURL:    getEnv("TOKEN_PAGE_URL", "https://www.jobsatamazon.co.uk/app#/jobSearch?query=Warehouse%20Operative&locale=en-GB"),
		TokenMarker:     getEnv("TOKEN_MARKER", "session"),
		TokenAttempts:   getEnvInt("TOKEN_ATTEMPTS", 3),
		TokenRetryDelay: getEnvSeconds("TOKEN_RETRY_DELAY_SECONDS", 10),
		BrowserTimeout:  getEnvSeconds("BROWSER_TIMEOUT_SECONDS", 45),
		BrowserSettle:   time.Duration(getEnvInt("BROWSER_SETTLE_MS", 5000)) * time.Millisecond,
		ChromePath:      getEnv("CHROME_PATH", ""),

		PollInterval:  getEnvSeconds("POLL_INTERVAL_SECONDS", 3600),
		RetryBackoff:  getEnvSeconds("RETRY_BACKOFF_SECONDS", 300),
		CycleTimeout:  getEnvSeconds("CYCLE_TIMEOUT_SECONDS", 0),
		RateLimitTime: getEnvSeconds("RATE_LIMIT_BLOCK_SECONDS", 500),

		NotifySinks:      getEnvList("NOTIFY_SINKS", []string{SinkTelegram}),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		AnnounceStartup:  getEnvBool("ANNOUNCE_STARTUP", false),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "jobs"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),

		Port: getEnv("PORT", "8080"),

		ErrorLogFile: getEnv("ERROR_LOG_FILE", ""),

		Environment: getEnv("JOBWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration. Missing destination settings are
// reported as configuration errors and are fatal at startup.
func (c *Config) Validate() error {
	if len(c.NotifySinks) == 0 {
		return errors.NewConfiguration("NOTIFY_SINKS must name at least one sink", nil)
	}
	for _, sink := range c.NotifySinks {
		switch sink {
		case SinkTelegram:
			if c.TelegramBotToken == "" {
				return errors.NewConfiguration("TELEGRAM_BOT_TOKEN is required for the telegram sink", nil)
			}
			if c.TelegramChatID == "" {
				return errors.NewConfiguration("TELEGRAM_CHAT_ID is required for the telegram sink", nil)
			}
		case SinkRedis:
			if c.RedisAddr == "" || c.RedisStream == "" {
				return errors.NewConfiguration("REDIS_ADDR and REDIS_STREAM are required for the redis sink", nil)
			}
			if c.RedisStreamCount <= 0 {
				return errors.NewConfiguration("REDIS_STREAM_COUNT must be positive", nil)
			}
		default:
			return errors.NewConfiguration("unknown notification sink "+strconv.Quote(sink), nil)
		}
	}

	switch c.TokenStrategy {
	case StrategyCookie, StrategyHeader, StrategyHTTP:
	default:
		return errors.NewConfiguration("unknown TOKEN_STRATEGY "+strconv.Quote(c.TokenStrategy), nil)
	}
	if c.TokenPageURL == "" || c.TokenMarker == "" {
		return errors.NewConfiguration("TOKEN_PAGE_URL and TOKEN_MARKER are required", nil)
	}
	if c.TokenAttempts <= 0 {
		return errors.NewConfiguration("TOKEN_ATTEMPTS must be positive", nil)
	}

	if c.SearchAPIURL == "" {
		return errors.NewConfiguration("SEARCH_API_URL is required", nil)
	}
	if c.SearchPageSize <= 0 || c.SearchPageSize > MaxPageSize {
		return errors.NewConfiguration("SEARCH_PAGE_SIZE must be between 1 and "+strconv.Itoa(MaxPageSize), nil)
	}
	if c.PollInterval <= 0 || c.RetryBackoff <= 0 {
		return errors.NewConfiguration("POLL_INTERVAL_SECONDS and RETRY_BACKOFF_SECONDS must be positive", nil)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
