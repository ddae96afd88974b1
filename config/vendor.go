package config

import (
	"strings"
	"time"
)

// VendorConfig holds the LWA credentials and the vendor API client settings.
type VendorConfig struct {
	RefreshToken string `env:"REFRESH_TOKEN"`
	ClientID     string `env:"LWA_APP_ID"`
	ClientSecret string `env:"LWA_CLIENT_SECRET"`
	TokenURL     string `env:"LWA_TOKEN_URL"     envDefault:"https://api.amazon.com/auth/o2/token"`

	Endpoint string `env:"SPAPI_ENDPOINT" envDefault:"https://sellingpartnerapi-na.amazon.com"`
	// RateLimit is requests per second; zero disables client-side throttling.
	RateLimit      float64       `env:"SPAPI_RATE_LIMIT"      envDefault:"0.5"`
	RateBurst      int           `env:"SPAPI_RATE_BURST"      envDefault:"1"`
	Timeout        time.Duration `env:"SPAPI_TIMEOUT"         envDefault:"60s"`
	MarketplaceIDs []string      `env:"SPAPI_MARKETPLACE_IDS" envDefault:"ATVPDKIKX0DER"`
}

// Sanitize trims credentials and applies safe client limits.
func (c *VendorConfig) Sanitize() {
	c.RefreshToken = strings.TrimSpace(c.RefreshToken)
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
	c.TokenURL = strings.TrimSpace(c.TokenURL)
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateBurst < 1 {
		c.RateBurst = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	c.MarketplaceIDs = trimAll(c.MarketplaceIDs)
}

// MissingRequired lists the unset credential variables.
func (c VendorConfig) MissingRequired() []string {
	var missing []string
	if c.RefreshToken == "" {
		missing = append(missing, "REFRESH_TOKEN")
	}
	if c.ClientID == "" {
		missing = append(missing, "LWA_APP_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "LWA_CLIENT_SECRET")
	}
	return missing
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
