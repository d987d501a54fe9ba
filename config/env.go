package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "CLOUDSTORE_"

var envSetters = map[string]func(*Config, string) error{
	"BASE_URL":            setBaseURL,
	"API_VERSION":         setAPIVersion,
	"API_KEY":             setAPIKey,
	"BEARER_TOKEN":        setBearerToken,
	"TIMEOUT":             setTimeout,
	"USER_AGENT":          setUserAgent,
	"PROXY_URL":           setProxyURL,
	"REQUESTS_PER_SECOND": setRequestsPerSecond,
}

// ApplyEnvOverrides applies CLOUDSTORE_* variables found through lookup.
// A nil lookup reads the process environment.
func ApplyEnvOverrides(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var overrides Config
	for key, setter := range envSetters {
		value, ok := lookup(envPrefix + key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if err := setter(&overrides, strings.TrimSpace(value)); err != nil {
			return Config{}, err
		}
	}

	return Merge(cfg, overrides), nil
}

func setBaseURL(cfg *Config, value string) error {
	cfg.BaseURL = value
	return nil
}

func setAPIVersion(cfg *Config, value string) error {
	cfg.APIVersion = value
	return nil
}

func setAPIKey(cfg *Config, value string) error {
	cfg.APIKey = value
	return nil
}

func setBearerToken(cfg *Config, value string) error {
	cfg.BearerToken = value
	return nil
}

func setTimeout(cfg *Config, value string) error {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return validationError(fmt.Sprintf("%sTIMEOUT must be a duration", envPrefix), err)
	}
	cfg.Timeout = parsed
	return nil
}

func setUserAgent(cfg *Config, value string) error {
	cfg.UserAgent = value
	return nil
}

func setProxyURL(cfg *Config, value string) error {
	cfg.ProxyURL = value
	return nil
}

func setRequestsPerSecond(cfg *Config, value string) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return validationError(fmt.Sprintf("%sREQUESTS_PER_SECOND must be a number", envPrefix), err)
	}
	cfg.RequestsPerSecond = parsed
	return nil
}
