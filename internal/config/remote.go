package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// LoadRemote fetches environment configuration from the service-urls API and
// sets it into the process environment, so a following Load() picks it up.
// It is a no-op when SERVICE_URLS_API or CONFIG_ENV is not set.
//
// Values already present in the environment are not overwritten; local env
// always wins over remote config.
func LoadRemote(log *logrus.Logger) error {
	base := os.Getenv("SERVICE_URLS_API")
	env := os.Getenv("CONFIG_ENV")
	if base == "" || env == "" {
		log.Debug("SERVICE_URLS_API or CONFIG_ENV not set, skipping remote config")
		return nil
	}

	url := fmt.Sprintf("%s/api/v1/config/%s/env-file", strings.TrimRight(base, "/"), env)

	body, err := fetchRemote(url, os.Getenv("CONFIG_API_KEY"))
	if err != nil {
		return fmt.Errorf("remote config: %w", err)
	}

	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("remote config: set %s: %w", key, err)
		}
		count++
	}

	log.WithFields(logrus.Fields{"count": count, "env": env}).Info("Loaded remote config")
	return nil
}

func fetchRemote(url, apiKey string) ([]byte, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	var body []byte
	op := func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if apiKey != "" {
			req.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(fmt.Errorf("authentication failed (HTTP %d), check CONFIG_API_KEY", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(b))
		}

		body = b
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}
