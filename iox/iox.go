// Package iox holds small cleanup helpers for deferred calls whose errors
// have nowhere useful to go.
package iox

import "io"

// DiscardClose closes c and drops the error.
//
//	defer iox.DiscardClose(logFile)
func DiscardClose(c io.Closer) { _ = c.Close() }

// DiscardErr calls fn and drops the error, for Sync or Flush style cleanup.
//
//	defer iox.DiscardErr(logger.Sync)
func DiscardErr(fn func() error) { _ = fn() }
