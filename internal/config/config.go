package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the harvest entry point needs. Nothing in the
// core packages reads the process environment directly; FromEnv is the only
// place recognized variables are resolved.
type Config struct {
	// Library account credentials for the login form.
	Username string
	Password string

	// LoginURL is the account login form; ListingURL is page 1 of the
	// recently-returned listing.
	LoginURL   string
	ListingURL string

	// TargetYear is the year being wrapped up. Items checked out in
	// TargetYear-1 terminate the harvest.
	TargetYear int

	// SessionTimeout bounds an entire harvest run.
	SessionTimeout time.Duration

	Headless bool
}

const (
	defaultLoginURL       = "https://sfpl.bibliocommons.com/user/login"
	defaultListingURL     = "https://sfpl.bibliocommons.com/v2/recentlyreturned?page=1"
	defaultSessionTimeout = 10 * time.Minute
)

// FromEnv builds a Config from the recognized environment variables,
// falling back to defaults for everything except credentials.
func FromEnv() Config {
	cfg := Config{
		Username:       os.Getenv("WRAPUP_USERNAME"),
		Password:       os.Getenv("WRAPUP_PASSWORD"),
		LoginURL:       defaultLoginURL,
		ListingURL:     defaultListingURL,
		TargetYear:     time.Now().Year(),
		SessionTimeout: defaultSessionTimeout,
		Headless:       true,
	}

	if v := os.Getenv("WRAPUP_LOGIN_URL"); v != "" {
		cfg.LoginURL = v
	}
	if v := os.Getenv("WRAPUP_LISTING_URL"); v != "" {
		cfg.ListingURL = v
	}
	if v := os.Getenv("WRAPUP_TARGET_YEAR"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			cfg.TargetYear = year
		}
	}
	if v := os.Getenv("WRAPUP_SESSION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTimeout = d
		}
	}

	return cfg
}

// Validate checks the fields a harvest run cannot proceed without.
func (c Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("missing username (set WRAPUP_USERNAME or --username)")
	}
	if c.Password == "" {
		return fmt.Errorf("missing password (set WRAPUP_PASSWORD)")
	}
	if c.TargetYear < 1900 || c.TargetYear > 2100 {
		return fmt.Errorf("implausible target year: %d", c.TargetYear)
	}
	return nil
}
