// Package client is the Remote Client: a thin JSON-over-HTTP wrapper around
// the Taskly REST API.
//
// Every call is a single attempt. Failures are classified into sentinel
// errors that the Sync Gateway matches with errors.Is / errors.As:
//
//   - ErrUnauthorized      HTTP 401; the session is no longer valid
//   - ErrUnavailable       transport failure (dial, DNS, reset, deadline)
//   - *RequestFailedError  any other non-2xx status, or success:false
//
// A bearer token is attached whenever the configured TokenSource yields one.
package client
