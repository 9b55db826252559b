package config

// CookieConfig defines the shared security baseline for all cookies issued by
// the server.
type CookieConfig struct {
	// Domain for the cookies.
	Domain string
	// Secure marks cookies as Secure. Only enable when transport is TLS.
	Secure bool
	// CrossSite relaxes SameSite to None for cross-origin production
	// deployments. Browsers reject SameSite=None without Secure.
	CrossSite bool
}
