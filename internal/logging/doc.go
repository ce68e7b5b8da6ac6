// Package logging provides structured logging for routerctl.
//
// This package wraps a zap logger with convenience functions for the patterns
// used by the router client and the CLI. Logging is silent by default so that
// command output stays clean; set ROUTERCTL_LOG_LEVEL or pass --log-level to
// turn it on.
//
// # Log Levels
//
//   - Debug: every SOAP request and response, including truncated bodies
//   - Info: session state changes (login, session dropped)
//   - Warn: responses that failed validation
//   - Error: command failures
//
// # SOAP Logging
//
// The router client logs through a *zap.Logger it is given, falling back to
// GetLogger(). The helpers take that logger explicitly:
//
//	logging.LogSOAPRequest(l, url, soap.ActionLogin, len(body))
//	logging.LogSOAPResponse(l, soap.ActionLogin, resp.StatusCode, resp.Body)
//	logging.LogInvalidResponse(l, action, resp.StatusCode, code, resp.Body)
//	logging.LogSessionTransition(l, host, "authenticated", "unauthenticated", "invalid response")
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format so it never mixes with JSON
// written to stdout.
package logging
