package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// HTTPClassifier calls a text-classification model-serving endpoint. The
// endpoint is expected to speak the standard inference API: POST {"inputs":
// "..."} returning a list of label/score lists, one per input.
type HTTPClassifier struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPClassifier builds a classifier for the given endpoint. token is sent
// as a Bearer token when non-empty. Pass a client with a Timeout set so each
// attempt is bounded; nil falls back to http.DefaultClient.
func NewHTTPClassifier(url, token string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClassifier{url: url, token: token, client: client}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

// Classify sends text to the model endpoint and returns its label scores.
// Transient failures are retried with exponential backoff; the caller's
// context cancels both attempts and waits between them.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	payload, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("toxicity: encode request: %w", err)
	}

	var scores []LabelScore
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("toxicity: classifier HTTP %d: %s", resp.StatusCode, string(body))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		// Standard shape is [[{label, score}, ...]]; some deployments
		// return the inner list directly.
		var nested [][]LabelScore
		if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
			scores = nested[0]
			return nil
		}
		var flat []LabelScore
		if err := json.Unmarshal(body, &flat); err == nil {
			scores = flat
			return nil
		}
		return backoff.Permanent(fmt.Errorf("toxicity: unexpected classifier response: %s", string(body)))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return scores, nil
}
