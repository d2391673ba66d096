// Package httputil provides the HTTP plumbing used to fetch remote map
// resources.
//
// # Overview
//
//   - [Client]: GET requests with default headers, status classification
//     and automatic retry
//   - [Retry]: exponential backoff for transient failures
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. [Client] marks
// transport failures and 5xx responses as retryable; a 404 or any other
// non-200 status fails on the first attempt:
//
//	c := httputil.NewClient(nil)
//	body, err := c.GetBytes(ctx, "https://cdn.jsdelivr.net/npm/us-atlas@3/states-albers-10m.json")
//
// # Configuration
//
// Default settings:
//
//   - Request timeout: 30 seconds
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling per attempt
package httputil
