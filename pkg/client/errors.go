package client

import (
	"errors"
	"strings"
)

// Error types for webhook responses.
// 4xx responses indicate non-retryable errors that should fail immediately.

// WebhookError represents an unexpected status returned by the unlock webhook.
type WebhookError struct {
	StatusCode int
	Message    string
}

func (e *WebhookError) Error() string {
	return e.Message
}

// HTTPStatusCode returns the HTTP status code from the webhook response.
func (e *WebhookError) HTTPStatusCode() int {
	return e.StatusCode
}

// BadRequestError indicates the webhook rejected the payload (400).
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return "bad request: " + e.Message
}

func (e *BadRequestError) HTTPStatusCode() int {
	return 400
}

// NotFoundError indicates the webhook endpoint does not exist (404).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return "resource not found: " + e.Resource
}

func (e *NotFoundError) HTTPStatusCode() int {
	return 404
}

// ForbiddenError indicates the caller is not allowed to publish (403).
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Message
}

func (e *ForbiddenError) HTTPStatusCode() int {
	return 403
}

// AuthenticationError indicates missing or invalid credentials (401).
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Message
}

func (e *AuthenticationError) HTTPStatusCode() int {
	return 401
}

// HTTPStatusCodeError is an interface for errors that include HTTP status codes.
type HTTPStatusCodeError interface {
	error
	HTTPStatusCode() int
}

// statusError maps a non-2xx response to a typed error.
func statusError(statusCode int, endpoint, body string) error {
	switch statusCode {
	case 400:
		return &BadRequestError{Message: body}
	case 401:
		return &AuthenticationError{Message: body}
	case 403:
		return &ForbiddenError{Message: body}
	case 404:
		return &NotFoundError{Resource: endpoint}
	default:
		return &WebhookError{StatusCode: statusCode, Message: "unexpected status from " + endpoint + ": " + body}
	}
}

// IsRetryableHTTPStatus determines if an HTTP status code should be retried.
//
// Non-retryable status codes (4xx client errors):
//   - 400, 401, 403, 404, 409, 422
//
// Retryable status codes:
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500, 502, 503, 504
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 400, 401, 403, 404, 409, 422:
		return false
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		// For unknown codes, treat 4xx as non-retryable, 5xx as retryable
		if statusCode >= 400 && statusCode < 500 {
			return false
		}
		return true
	}
}

// IsRetryableError determines if a publish error should be retried.
//
// Classification strategy:
// 1. If error implements HTTPStatusCodeError, check status code (most reliable)
// 2. Fallback to error message pattern matching (for transport errors)
//
// Network timeouts, connection refused and DNS failures are retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr HTTPStatusCodeError
	if errors.As(err, &httpErr) {
		return IsRetryableHTTPStatus(httpErr.HTTPStatusCode())
	}

	errMsg := strings.ToLower(err.Error())

	nonRetryablePatterns := []string{
		"bad request",
		"invalid argument",
		"not found",
		"forbidden",
		"unauthorized",
		"authentication failed",
		"permission denied",
		"unsupported protocol scheme",
		"context canceled",
	}

	for _, pattern := range nonRetryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return false
		}
	}

	return true
}
