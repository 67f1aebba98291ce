package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration (fast cache + event stream)
	RedisAddr         string
	RedisDB           int
	RedisUsername     string
	RedisPassword     string
	RedisStream       string
	RedisStreamMaxLen int

	// Memcache configuration (alternate cache backend)
	MemcacheAddr string

	// CacheBackend selects the fast cache implementation: "redis" or "memcache"
	CacheBackend string

	// Cache expiry for serialized symbol responses
	CacheExpiry time.Duration

	// FreshnessWindow is how recent a stored scrape must be to skip re-crawling
	FreshnessWindow time.Duration

	// MongoDB configuration
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Source URLs
	SettradeURL    string
	SETCalendarURL string

	// Crawler configuration
	PageSizeHint  int
	MaxRetries    int
	RetryBackoff  time.Duration
	PageTimeout   time.Duration
	WaitTimeout   time.Duration
	PageDelay     time.Duration
	CrawlInterval time.Duration
	MonthsAhead   int
	Headless      bool

	// WatchSymbols are refreshed through the gateway on every crawl cycle
	WatchSymbols []string

	// Era conversion thresholds for Thai date strings. The reference values
	// (2500/2200/543) follow the source pages' Buddhist-era convention.
	ShortYearOffset int
	EraCutoverYear  int
	EraOffset       int
	StaleYears      int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheExpiry, _ := strconv.Atoi(getEnv("CACHE_EXPIRY", "300"))
	freshnessDays, _ := strconv.Atoi(getEnv("FRESHNESS_DAYS", "30"))
	pageSize, _ := strconv.Atoi(getEnv("PAGE_SIZE_HINT", "45"))
	maxRetries, _ := strconv.Atoi(getEnv("MAX_RETRIES", "3"))
	retryBackoff, _ := strconv.Atoi(getEnv("RETRY_BACKOFF_SECONDS", "2"))
	pageTimeout, _ := strconv.Atoi(getEnv("PAGE_TIMEOUT_SECONDS", "30"))
	waitTimeout, _ := strconv.Atoi(getEnv("WAIT_TIMEOUT_SECONDS", "10"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_MILLIS", "1500"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "3600"))
	monthsAhead, _ := strconv.Atoi(getEnv("MONTHS_AHEAD", "7"))
	shortYearOffset, _ := strconv.Atoi(getEnv("ERA_SHORT_YEAR_OFFSET", "2500"))
	eraCutover, _ := strconv.Atoi(getEnv("ERA_CUTOVER_YEAR", "2200"))
	eraOffset, _ := strconv.Atoi(getEnv("ERA_OFFSET", "543"))
	staleYears, _ := strconv.Atoi(getEnv("STALE_YEARS", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "1000"))

	return &Config{
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           redisDB,
		RedisUsername:     getEnv("REDIS_USERNAME", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisStream:       getEnv("REDIS_STREAM", "dividends"),
		RedisStreamMaxLen: streamMaxLen,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", "localhost:11211"),
		CacheBackend:      getEnv("CACHE_BACKEND", "redis"),
		CacheExpiry:       time.Duration(cacheExpiry) * time.Second,
		FreshnessWindow:   time.Duration(freshnessDays) * 24 * time.Hour,
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "dividend_db"),
		MongoCollection:   getEnv("MONGO_COLLECTION", "dividends"),
		SettradeURL:       getEnv("SETTRADE_URL", "https://www.settrade.com/th/equities/quote/%s/rights-benefits"),
		SETCalendarURL:    getEnv("SET_CALENDAR_URL", "https://www.set.or.th/th/market/stock-calendar/x-calendar"),
		PageSizeHint:      pageSize,
		MaxRetries:        maxRetries,
		RetryBackoff:      time.Duration(retryBackoff) * time.Second,
		PageTimeout:       time.Duration(pageTimeout) * time.Second,
		WaitTimeout:       time.Duration(waitTimeout) * time.Second,
		PageDelay:         time.Duration(pageDelay) * time.Millisecond,
		CrawlInterval:     time.Duration(crawlInterval) * time.Second,
		MonthsAhead:       monthsAhead,
		Headless:          getEnv("HEADLESS", "true") != "false",
		ShortYearOffset:   shortYearOffset,
		EraCutoverYear:    eraCutover,
		EraOffset:         eraOffset,
		StaleYears:        staleYears,
		Environment:       getEnv("DIVIDEND_ENVIRONMENT", "development"),
		WatchSymbols:      splitList(getEnv("WATCH_SYMBOLS", "")),
	}
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	if c.CacheBackend != "redis" && c.CacheBackend != "memcache" {
		return fmt.Errorf("unknown cache backend: %q", c.CacheBackend)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d", c.MaxRetries)
	}
	if c.PageSizeHint <= 0 {
		return fmt.Errorf("page size hint must be positive: %d", c.PageSizeHint)
	}
	if c.EraOffset <= 0 || c.ShortYearOffset <= 0 || c.EraCutoverYear <= 0 {
		return fmt.Errorf("era thresholds must be positive")
	}
	return nil
}

// splitList parses a comma separated list, dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
