package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultLanguage = "English"

type Config struct {
	Database  Database  `yaml:"database"`
	Server    Server    `yaml:"server"`
	Scraper   Scraper   `yaml:"scraper"`
	Telegram  Telegram  `yaml:"telegram"`
	Scheduler Scheduler `yaml:"scheduler"`
	Logger    Logger    `yaml:"logger"`

	// KnownSets is the sweep list for scrape_all_sets.
	KnownSets []KnownSet `yaml:"known-sets"`
}

type Database struct {
	Host     string `env:"DB_HOST" env-default:"localhost" yaml:"host"`
	Port     int    `env:"DB_PORT" env-default:"5432" yaml:"port"`
	User     string `env:"DB_USER" env-default:"postgres" yaml:"user"`
	Password string `env:"DB_PASSWORD" env-default:"postgres" yaml:"password"`
	Name     string `env:"DB_NAME" env-default:"postgres" yaml:"name"`
	SSLMode  string `env:"DB_SSL_MODE" env-default:"disable" yaml:"ssl-mode"`
}

func (d *Database) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type Server struct {
	Host string `env:"SERVER_HOST" env-default:"" yaml:"host"`
	Port int    `env:"SERVER_PORT" env-default:"8000" yaml:"port"`
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Scraper holds everything markup-dependent. Selectors are configuration, so a
// marketplace layout change is a config edit, not a code change.
type Scraper struct {
	TCGPlayer TCGPlayer `yaml:"tcgplayer"`
	EBay      EBay      `yaml:"ebay"`

	// CacheTTL bounds how long fetched TCGPlayer listings are reused before a
	// fresh browser session is opened for the same query.
	CacheTTL       string        `env:"SCRAPER_CACHE_TTL" env-default:"24h" yaml:"cache-ttl"`
	ParsedCacheTTL time.Duration `yaml:"-"`
}

type TCGPlayer struct {
	BaseURL           string        `env:"TCGPLAYER_BASE_URL" env-default:"https://www.tcgplayer.com/search/pokemon" yaml:"base-url"`
	Headless          bool          `env:"TCGPLAYER_HEADLESS" env-default:"true" yaml:"headless"`
	BrowserBin        string        `env:"TCGPLAYER_BROWSER_BIN" env-default:"" yaml:"browser-bin"`
	PageTimeout       string        `env:"TCGPLAYER_PAGE_TIMEOUT" env-default:"10s" yaml:"page-timeout"`
	ParsedPageTimeout time.Duration `yaml:"-"`

	ResultSelector  string `env:"TCGPLAYER_RESULT_SELECTOR" env-default:"div.search-result" yaml:"result-selector"`
	TitleSelector   string `env:"TCGPLAYER_TITLE_SELECTOR" env-default:"span.product-card__title" yaml:"title-selector"`
	PriceSelector   string `env:"TCGPLAYER_PRICE_SELECTOR" env-default:"span.product-card__market-price--value" yaml:"price-selector"`
	SetNameSelector string `env:"TCGPLAYER_SET_NAME_SELECTOR" env-default:"div.product-card__set-name__variant" yaml:"set-name-selector"`
	RaritySelector  string `env:"TCGPLAYER_RARITY_SELECTOR" env-default:"div.product-card__rarity__variant span" yaml:"rarity-selector"`
}

type EBay struct {
	BaseURL       string        `env:"EBAY_BASE_URL" env-default:"https://www.ebay.com/sch/i.html" yaml:"base-url"`
	Timeout       string        `env:"EBAY_TIMEOUT" env-default:"30s" yaml:"timeout"`
	ParsedTimeout time.Duration `yaml:"-"`

	// MaxSoldAge excludes dated sales older than this window from the PSA 10
	// average. Zero keeps every sale regardless of age.
	MaxSoldAge       string        `env:"EBAY_MAX_SOLD_AGE" env-default:"0" yaml:"max-sold-age"`
	ParsedMaxSoldAge time.Duration `yaml:"-"`

	SoldItemSelector string `env:"EBAY_SOLD_ITEM_SELECTOR" env-default:"li.s-item.s-item__pl-on-bottom" yaml:"sold-item-selector"`
	PriceSelector    string `env:"EBAY_PRICE_SELECTOR" env-default:"span.s-item__price" yaml:"price-selector"`
	SoldDateSelector string `env:"EBAY_SOLD_DATE_SELECTOR" env-default:"span.s-item__caption" yaml:"sold-date-selector"`
}

type Telegram struct {
	Token  string `env:"TELEGRAM_TOKEN" env-default:"" yaml:"token"`
	ChatID int64  `env:"TELEGRAM_CHAT_ID" env-default:"0" yaml:"chat-id"`

	// ProfitThreshold is the minimum profit potential (percent) that triggers
	// an alert message.
	ProfitThreshold float64 `env:"TELEGRAM_PROFIT_THRESHOLD" env-default:"50" yaml:"profit-threshold"`
}

func (t *Telegram) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type Scheduler struct {
	// RefreshSpec is a cron expression for the periodic refresh of all known
	// sets. Empty disables the job.
	RefreshSpec string `env:"SCHEDULER_REFRESH_SPEC" env-default:"" yaml:"refresh-spec"`
	Timezone    string `env:"SCHEDULER_TIMEZONE" env-default:"UTC" yaml:"timezone"`
}

// KnownSet is one entry of the scrape_all_sets sweep.
type KnownSet struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
}

type Logger struct {
	Level           string     `env:"LOG_LEVEL" env-default:"info" yaml:"level"`
	ParsedSlogLevel slog.Level `yaml:"-"`
	GORMLevel       string     `env:"GORM_LOG_LEVEL" env-default:"info" yaml:"gorm_level"`
	ParsedGORMLevel slog.Level `yaml:"-"`
}

// MustLoad loads config from a file.
func MustLoad(configPath string) *Config {
	cnf := &Config{}

	if err := cleanenv.ReadConfig(configPath, cnf); err != nil {
		panic(fmt.Errorf("cannot read config: %w", err))
	}

	cnf.Logger.ParsedSlogLevel = parseLevel(cnf.Logger.Level)
	cnf.Logger.ParsedGORMLevel = parseLevel(cnf.Logger.GORMLevel)

	cnf.Scraper.ParsedCacheTTL = mustParseDuration(cnf.Scraper.CacheTTL)
	cnf.Scraper.TCGPlayer.ParsedPageTimeout = mustParseDuration(cnf.Scraper.TCGPlayer.PageTimeout)
	cnf.Scraper.EBay.ParsedTimeout = mustParseDuration(cnf.Scraper.EBay.Timeout)
	cnf.Scraper.EBay.ParsedMaxSoldAge = mustParseDuration(cnf.Scraper.EBay.MaxSoldAge)

	return cnf
}

func mustParseDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		panic(fmt.Errorf("cannot parse duration %q: %w", raw, err))
	}

	return d
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
