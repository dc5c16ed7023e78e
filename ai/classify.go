package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"
)

var statusCodePattern = regexp.MustCompile(`(?i)status(?: code)?[:= ]+(\d{3})`)

// transientMarkers are lowercase fragments of error messages that indicate a
// failure worth retrying when the client library gives us nothing structured.
var transientMarkers = []string{
	"rate limit",
	"too many requests",
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"temporarily unavailable",
	"server overloaded",
	"service unavailable",
	"bad gateway",
	"eof",
}

// ClassifyStatus maps an HTTP status code to an ErrorKind.
// 408, 409, 425, 429 and 5xx are transient; everything else is permanent.
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code == 408, code == 409, code == 425, code == 429:
		return Transient
	case code >= 500 && code <= 599:
		return Transient
	default:
		return Permanent
	}
}

// Classify wraps err in an *EmbeddingError. Errors that already are
// *EmbeddingError are returned unchanged. Unknown failures are permanent.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var embErr *EmbeddingError
	if errors.As(err, &embErr) {
		return err
	}

	return &EmbeddingError{Kind: classifyKind(err), Cause: err}
}

func classifyKind(err error) ErrorKind {
	switch {
	case errors.Is(err, context.Canceled):
		return Permanent
	case errors.Is(err, context.DeadlineExceeded):
		return Transient
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return Transient
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Transient
	}

	msg := err.Error()
	if m := statusCodePattern.FindStringSubmatch(msg); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			return ClassifyStatus(code)
		}
	}

	lower := strings.ToLower(msg)
	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			return Transient
		}
	}
	return Permanent
}
