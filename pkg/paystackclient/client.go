/**
 * @description
 * This package provides a client for the Paystack API. It encapsulates
 * authenticated HTTP request execution with a fixed per-attempt timeout,
 * capped exponential backoff, and failure classification, plus one method per
 * remote operation (banks, account resolution, recipients, balance, transfers,
 * transactions).
 *
 * Retry policy: transport errors, unparseable bodies, and 5xx responses are
 * retried up to MaxRetries times with min(2^attempt, 10)s pauses; 4xx
 * responses and envelope-level rejections are surfaced immediately, except
 * rejections whose message matches RetryableDomainFailure (transient backend
 * faults reported inside a 200). Retries never change the request payload, so
 * a caller-assigned transfer reference is preserved across attempts.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, log, net/http, net/url, strings, time: Standard Go libraries.
 */
package paystackclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production Paystack API host.
	DefaultBaseURL = "https://api.paystack.co"
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	requestTimeout  = 30 * time.Second
	maxBackoffDelay = 10 * time.Second
)

// placeholderKeys are sentinel values a fresh deployment ships with; a key
// equal to one of these must fail before any network call is made.
var placeholderKeys = []string{"sk_test_placeholder", "sk_test_your_secret_key_here", ""}

// DefaultRetryableDomainFailure reports whether an envelope-level rejection
// looks like a transient backend fault rather than a business decision. The
// gateway reports both through the same {status:false, message} shape, so the
// message text is the only signal available.
func DefaultRetryableDomainFailure(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "network") || strings.Contains(lower, "timeout")
}

// Client is a client for the Paystack API. It holds no mutable state, so a
// single instance may be shared by concurrent callers.
type Client struct {
	BaseURL    string
	SecretKey  string
	MaxRetries int
	HTTPClient *http.Client

	// RetryableDomainFailure decides whether a status:false envelope is worth
	// retrying. Defaults to DefaultRetryableDomainFailure when nil.
	RetryableDomainFailure func(message string) bool

	// sleep paces the retry loop; tests replace it to observe delays without
	// waiting them out.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Paystack API client with the default retry budget
// and a 30s per-attempt timeout.
func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		SecretKey:  secretKey,
		MaxRetries: DefaultMaxRetries,
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
		},
		RetryableDomainFailure: DefaultRetryableDomainFailure,
		sleep:                  sleepContext,
	}
}

// credentialConfigured reports whether the secret key is usable.
func (c *Client) credentialConfigured() bool {
	for _, placeholder := range placeholderKeys {
		if c.SecretKey == placeholder {
			return false
		}
	}
	return true
}

func (c *Client) domainFailureRetryable(message string) bool {
	if c.RetryableDomainFailure != nil {
		return c.RetryableDomainFailure(message)
	}
	return DefaultRetryableDomainFailure(message)
}

func (c *Client) sleepFor(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoffDelay is the pause before retry number attempt: 2^attempt seconds,
// capped at 10s.
func backoffDelay(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoffDelay {
		return maxBackoffDelay
	}
	return d
}

// execute performs one logical request against the gateway: up to
// MaxRetries+1 attempts with classification of every outcome. It returns the
// parsed response envelope on success and an *APIError on every failure path.
func (c *Client) execute(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	if !c.credentialConfigured() {
		return nil, &APIError{
			Kind:       ErrorKindConfiguration,
			StatusCode: http.StatusUnauthorized,
			Message:    "Paystack API key not configured. Please set PAYSTACK_SECRET_KEY in environment variables.",
		}
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Kind: ErrorKindClient, Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		payload = encoded
	}

	requestURL := c.BaseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	maxRetries := c.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			log.Printf("level=info component=paystack_client msg=\"retrying request\" method=%s path=%s delay=%s attempt=%d max_attempts=%d", method, path, delay, attempt+1, maxRetries+1)
			if err := c.sleepFor(ctx, delay); err != nil {
				return nil, &APIError{Kind: ErrorKindNetwork, Message: fmt.Sprintf("request cancelled during backoff: %v", err)}
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
		if err != nil {
			return nil, &APIError{Kind: ErrorKindClient, Message: fmt.Sprintf("failed to build request: %v", err)}
		}
		req.Header.Set("Authorization", "Bearer "+c.SecretKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &APIError{Kind: ErrorKindNetwork, Message: fmt.Sprintf("Network error after %d attempts: %v", attempt+1, err)}
			}
			log.Printf("level=warn component=paystack_client msg=\"transport error\" method=%s path=%s attempt=%d err=%v", method, path, attempt+1, err)
			if attempt < maxRetries {
				continue
			}
			return nil, &APIError{Kind: ErrorKindNetwork, Message: fmt.Sprintf("Network error after %d attempts: %v", maxRetries+1, err)}
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			log.Printf("level=warn component=paystack_client msg=\"failed to read response body\" method=%s path=%s attempt=%d err=%v", method, path, attempt+1, readErr)
			if attempt < maxRetries {
				continue
			}
			return nil, &APIError{Kind: ErrorKindNetwork, Message: fmt.Sprintf("Network error after %d attempts: %v", maxRetries+1, readErr)}
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("level=warn component=paystack_client msg=\"invalid JSON response\" method=%s path=%s status=%d attempt=%d", method, path, resp.StatusCode, attempt+1)
			if attempt < maxRetries {
				continue
			}
			return nil, &APIError{
				Kind:       ErrorKindParse,
				StatusCode: resp.StatusCode,
				Message:    "Invalid JSON response from Paystack API",
				Response:   raw,
			}
		}

		if resp.StatusCode >= 500 {
			log.Printf("level=warn component=paystack_client msg=\"server error\" method=%s path=%s status=%d attempt=%d", method, path, resp.StatusCode, attempt+1)
			if attempt < maxRetries {
				continue
			}
			message := env.Message
			if message == "" {
				message = fmt.Sprintf("Server error %d", resp.StatusCode)
			}
			return nil, &APIError{Kind: ErrorKindServer, StatusCode: resp.StatusCode, Message: message, Response: raw}
		}

		if resp.StatusCode >= 400 {
			message := env.Message
			if message == "" {
				message = "Unknown client error occurred"
			}
			log.Printf("level=warn component=paystack_client msg=\"client error\" method=%s path=%s status=%d err_msg=%q", method, path, resp.StatusCode, message)
			return nil, &APIError{Kind: ErrorKindClient, StatusCode: resp.StatusCode, Message: message, Response: raw}
		}

		if !env.Status {
			message := env.Message
			if message == "" {
				message = "Request failed"
			}
			if c.domainFailureRetryable(message) && attempt < maxRetries {
				log.Printf("level=warn component=paystack_client msg=\"transient gateway failure\" method=%s path=%s err_msg=%q attempt=%d", method, path, message, attempt+1)
				continue
			}
			log.Printf("level=warn component=paystack_client msg=\"gateway rejected request\" method=%s path=%s err_msg=%q", method, path, message)
			return nil, &APIError{Kind: ErrorKindDomain, Message: message, Response: raw}
		}

		return &env, nil
	}

	return nil, &APIError{Kind: ErrorKindNetwork, Message: "Maximum retry attempts exhausted"}
}

// decodeData unmarshals the envelope's data block into target. An empty data
// block leaves target at its zero value.
func decodeData(env *envelope, target any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return &APIError{Kind: ErrorKindParse, Message: fmt.Sprintf("failed to decode response data: %v", err), Response: env.Data}
	}
	return nil
}

// decodeMeta unmarshals the envelope's pagination metadata into target.
func decodeMeta(env *envelope, target *ListMeta) error {
	if len(env.Meta) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Meta, target); err != nil {
		return &APIError{Kind: ErrorKindParse, Message: fmt.Sprintf("failed to decode response meta: %v", err), Response: env.Meta}
	}
	return nil
}
