package mirror

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for mirror failure classification.
var (
	// ErrPermissionDenied indicates a permission/access failure (EACCES).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDiskFull indicates storage is out of space (ENOSPC).
	ErrDiskFull = errors.New("no space left on device")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrThrottled indicates rate limiting (429, SlowDown).
	ErrThrottled = errors.New("rate limited")

	// ErrAuth indicates missing or rejected credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrAccessDenied indicates valid credentials without permission (403).
	ErrAccessDenied = errors.New("access denied")

	// ErrNetwork indicates a network-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network error")

	// ErrUnclassified is used when no other kind matches.
	ErrUnclassified = errors.New("storage error")
)

// StorageError wraps an underlying error with its classification.
type StorageError struct {
	// Kind is the sentinel error for classification.
	Kind error
	// Op is the operation that failed ("init" or "write").
	Op string
	// Path is the store key or backend involved.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("mirror %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("mirror %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// WrapWriteError classifies and wraps a store write error.
// Returns nil if err is nil.
func WrapWriteError(err error, key string) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: classifyError(err), Op: "write", Path: key, Err: err}
}

// WrapInitError classifies and wraps a store initialization error.
// Returns nil if err is nil.
func WrapInitError(err error, backend string) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: classifyError(err), Op: "init", Path: backend, Err: err}
}

// classifyError picks the sentinel for err by type, then by message.
func classifyError(err error) error {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "accessdenied", "forbidden", "403"):
		return ErrAccessDenied
	case containsAny(msg, "permission denied", "eacces"):
		return ErrPermissionDenied
	case containsAny(msg, "no space left", "disk full", "enospc", "quota exceeded"):
		return ErrDiskFull
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ErrTimeout
	case containsAny(msg, "slowdown", "rate exceeded", "throttl", "429", "toomanyrequests"):
		return ErrThrottled
	case containsAny(msg, "nocredentialproviders", "credentials", "invalidaccesskeyid",
		"signaturedoesnotmatch", "expiredtoken", "401", "unauthorized"):
		return ErrAuth
	case containsAny(msg, "connection refused", "no route to host", "network unreachable",
		"no such host", "dial tcp"):
		return ErrNetwork
	default:
		return ErrUnclassified
	}
}

// containsAny reports whether s contains any of the lowercase substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
