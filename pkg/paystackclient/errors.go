/**
 * @description
 * Error taxonomy for the Paystack client. Every failure path in this package
 * resolves to an *APIError carrying a human-readable message, the remote HTTP
 * status code when one exists, and the raw response body when one was read, so
 * callers debugging a failed transfer lose nothing.
 *
 * @dependencies
 * - encoding/json, errors, fmt: Standard Go libraries.
 */
package paystackclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies an APIError by its cause.
type ErrorKind string

const (
	// ErrorKindConfiguration means the secret key is missing or a placeholder;
	// no network call was attempted.
	ErrorKindConfiguration ErrorKind = "configuration"
	// ErrorKindNetwork means a transport-level failure persisted through all
	// retry attempts.
	ErrorKindNetwork ErrorKind = "network"
	// ErrorKindParse means the response body was not valid JSON (or did not
	// match the expected payload shape).
	ErrorKindParse ErrorKind = "parse"
	// ErrorKindClient means the remote rejected the request with a 4xx status.
	// Retrying cannot help.
	ErrorKindClient ErrorKind = "client"
	// ErrorKindServer means the remote kept answering with 5xx statuses until
	// retries were exhausted.
	ErrorKindServer ErrorKind = "server"
	// ErrorKindDomain means the remote answered below 400 but flagged the
	// request as failed in the response envelope.
	ErrorKindDomain ErrorKind = "domain"
)

// APIError is the single error type surfaced by this package.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int             // 0 when the failure happened before or without an HTTP response
	Response   json.RawMessage // raw remote body when one was read
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("paystack: %s (status %d)", e.Message, e.StatusCode)
	}
	return "paystack: " + e.Message
}

// AsAPIError unwraps err into an *APIError if there is one in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

// IsIndeterminate reports whether err leaves the outcome of the request
// unknown: the remote may have processed it even though no decisive answer
// came back. Callers initiating transfers must re-query by reference before
// resubmitting after one of these.
func IsIndeterminate(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.Kind {
	case ErrorKindNetwork, ErrorKindServer, ErrorKindParse:
		return true
	}
	return false
}
