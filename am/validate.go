package am

import (
	"net/url"

	"github.com/teranos/actorgraph/errors"
)

var validColorData = map[string]bool{
	"revenueTotal": true, "revenueAverage": true, "voteAverage": true, "none": true,
}

var validColorSchemes = map[string]bool{
	"viridis": true, "magma": true, "plasma": true, "heatmap": true,
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "", BackendSQLite:
	case BackendMongo:
		if c.Database.MongoURI == "" {
			return errors.New("database.mongo_uri cannot be empty when database.backend = \"mongo\"")
		}
	default:
		return errors.Newf("database.backend must be %q or %q, got %q", BackendSQLite, BackendMongo, c.Database.Backend)
	}

	// 0 means "use the default port"
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.WSMessagesPerSecond < 0 {
		return errors.Newf("server.ws_messages_per_second must be >= 0, got %v", c.Server.WSMessagesPerSecond)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return errors.New("server read/write timeouts must be >= 0")
	}

	if c.Explore.ExpandLimit < 0 {
		return errors.Newf("explore.expand_limit must be >= 0, got %d", c.Explore.ExpandLimit)
	}
	if c.Explore.MaxSelected < 0 {
		return errors.Newf("explore.max_selected must be >= 0, got %d", c.Explore.MaxSelected)
	}
	if c.Explore.FetchConcurrency < 0 {
		return errors.Newf("explore.fetch_concurrency must be >= 0, got %d", c.Explore.FetchConcurrency)
	}
	if c.Explore.ProxyURL != "" {
		u, err := url.Parse(c.Explore.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.WithHint(
				errors.Newf("explore.proxy_url %q is not an absolute URL", c.Explore.ProxyURL),
				"use e.g. http://localhost:4201 or leave it empty to read the local store")
		}
	}
	if c.Explore.ColorData != "" && !validColorData[c.Explore.ColorData] {
		return errors.Newf("explore.color_data %q is not one of revenueTotal, revenueAverage, voteAverage, none", c.Explore.ColorData)
	}
	if c.Explore.ColorScheme != "" && !validColorSchemes[c.Explore.ColorScheme] {
		return errors.Newf("explore.color_scheme %q is not one of viridis, magma, plasma, heatmap", c.Explore.ColorScheme)
	}

	return nil
}
