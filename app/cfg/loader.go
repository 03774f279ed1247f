package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Discord configuration
	DiscordToken string `long:"discord-token" env:"DISCORD_TOKEN" description:"Discord bot token (required)" required:"true"`

	// eBay API configuration
	EbayAppID       string `long:"ebay-app-id" env:"EBAY_APP_ID" description:"eBay application (client) ID (required)" required:"true"`
	EbayCertID      string `long:"ebay-cert-id" env:"EBAY_CERT_ID" description:"eBay certificate (client secret) ID (required)" required:"true"`
	EbayRedirectURI string `long:"ebay-redirect-uri" env:"EBAY_REDIRECT_URI" description:"OAuth redirect URI (RuName) for user login"`
	EbaySandbox     bool   `long:"ebay-sandbox" env:"EBAY_SANDBOX" description:"Use the eBay sandbox environment"`

	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./dealhound.db" description:"Path to the sqlite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"3000" description:"HTTP server port for the OAuth callback"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the OAuth callback (e.g., https://bot.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for sweep processing"`
	DealSweepInterval int    `long:"deal-sweep-interval" env:"DEAL_SWEEP_INTERVAL" default:"300" description:"Deal sweep interval in seconds"`
	BidSweepInterval  int    `long:"bid-sweep-interval" env:"BID_SWEEP_INTERVAL" default:"30" description:"Bid sweep interval in seconds"`
	SearchLimit       int    `long:"search-limit" env:"SEARCH_LIMIT" default:"10" description:"Maximum listings fetched per monitor query"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Dealhound/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DiscordToken:      raw.DiscordToken,
		EbayAppID:         raw.EbayAppID,
		EbayCertID:        raw.EbayCertID,
		EbayRedirectURI:   raw.EbayRedirectURI,
		EbaySandbox:       raw.EbaySandbox,
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		DealSweepInterval: raw.DealSweepInterval,
		BidSweepInterval:  raw.BidSweepInterval,
		SearchLimit:       raw.SearchLimit,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
