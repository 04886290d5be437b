// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr       string
	DBPath           string
	PublicRoot       string
	BaseRoute        string
	AutoFollow       bool
	NotifyWebhookURL string
	AdminPersonIDs   []int64
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional. Defaults: FORUMS_LISTEN_ADDR
// (127.0.0.1:8080), FORUMS_DB_PATH (forums.db), FORUMS_BASE_ROUTE (/topics),
// FORUMS_AUTO_FOLLOW (true). FORUMS_PUBLIC_ROOT is empty by default, which
// makes cross-reference links relative. FORUMS_NOTIFY_WEBHOOK_URL is empty by
// default, which disables follower notifications. FORUMS_ADMIN_PERSON_IDS is
// a comma-separated list of person ids granted administrator rights.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("FORUMS_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "forums.db"
	if v, ok := os.LookupEnv("FORUMS_DB_PATH"); ok {
		dbPath = v
	}

	publicRoot := strings.TrimSuffix(os.Getenv("FORUMS_PUBLIC_ROOT"), "/")

	baseRoute := "/topics"
	if v, ok := os.LookupEnv("FORUMS_BASE_ROUTE"); ok {
		baseRoute = v
	}
	if !strings.HasPrefix(baseRoute, "/") {
		return nil, fmt.Errorf("FORUMS_BASE_ROUTE must start with a slash, got %q", baseRoute)
	}

	autoFollow := true
	if v, ok := os.LookupEnv("FORUMS_AUTO_FOLLOW"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("FORUMS_AUTO_FOLLOW has invalid boolean %q: %w", v, err)
		}
		autoFollow = parsed
	}

	adminIDs := []int64{}
	if v, ok := os.LookupEnv("FORUMS_ADMIN_PERSON_IDS"); ok && v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("FORUMS_ADMIN_PERSON_IDS has invalid id %q: %w", part, err)
			}
			adminIDs = append(adminIDs, id)
		}
	}

	return &Config{
		ListenAddr:       listenAddr,
		DBPath:           dbPath,
		PublicRoot:       publicRoot,
		BaseRoute:        baseRoute,
		AutoFollow:       autoFollow,
		NotifyWebhookURL: os.Getenv("FORUMS_NOTIFY_WEBHOOK_URL"),
		AdminPersonIDs:   adminIDs,
	}, nil
}
