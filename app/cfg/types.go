package cfg

type Cfg struct {
	// Discord configuration
	DiscordToken string

	// eBay API configuration
	EbayAppID       string
	EbayCertID      string
	EbayRedirectURI string
	EbaySandbox     bool

	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	DealSweepInterval int
	BidSweepInterval  int
	SearchLimit       int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
