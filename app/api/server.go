package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealhound/dealhound/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// ngrok's interstitial breaks the OAuth redirect without this header
	r.Use(func(c *gin.Context) {
		c.Header("ngrok-skip-browser-warning", "true")
		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/auth/ebay/callback", handler.AuthCallback)
	r.GET("/auth/ebay/declined", handler.AuthDeclined)

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	r.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(200, landingPage, cfg.Get().Port)
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

const landingPage = `<html>
  <head>
    <title>Dealhound - Auth Server</title>
    <style>
      body { font-family: sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
      h1 { color: #0064d2; }
      .status { background: #e8f5e9; padding: 15px; border-radius: 5px; margin: 20px 0; }
      code { background: #f5f5f5; padding: 2px 6px; border-radius: 3px; }
    </style>
  </head>
  <body>
    <h1>🤖 Dealhound - Auth Server</h1>
    <div class="status"><strong>✅ Server Status:</strong> Running</div>
    <p>This is the OAuth callback server for the Dealhound Discord bot.</p>
    <h3>How to use:</h3>
    <ol>
      <li>Go to your Discord server</li>
      <li>Use the <code>/login</code> command</li>
      <li>Click the login link and authorize with eBay</li>
      <li>You'll be redirected back here automatically</li>
    </ol>
    <p><small>Server running on port %s</small></p>
  </body>
</html>`

const loginSuccessPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: green;">✅ Login Successful!</h1>
    <p>You have successfully authenticated with eBay.</p>
    <p>You can now go back to Discord and use the <code>/bid</code> command.</p>
    <script>setTimeout(() => window.close(), 5000);</script>
  </body>
</html>`

const loginFailedPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: red;">❌ Login Failed</h1>
    <p>Something went wrong while linking your account. Try /login again.</p>
  </body>
</html>`

const loginDeclinedPage = `<html>
  <body style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: orange;">🚫 Login Cancelled</h1>
    <p>You declined the eBay authorization.</p>
    <p>If you change your mind, use the <code>/login</code> command in Discord again.</p>
    <script>setTimeout(() => window.close(), 3000);</script>
  </body>
</html>`
