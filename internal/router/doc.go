// Package router implements a client for a home router's SOAP control API.
//
// The client authenticates against the router, lists attached devices, reads
// the traffic meter and allows or blocks devices by MAC address. Requests are
// built by package soap; this package owns the session and turns responses
// into typed results.
//
// # Usage Example
//
//	client, err := router.NewClient(router.Config{
//	    Host:     "192.168.1.1",
//	    Password: password,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	devices, err := client.GetAttachedDevices(ctx)
//	if err != nil {
//	    log.Fatal(router.GetShortErrorMessage(err))
//	}
//
//	err = client.SetBlockDevice(ctx, "AA:BB:CC:DD:EE:01", router.AccessBlock)
//
// # Sessions
//
// A Session is either unauthenticated or authenticated. Every operation goes
// through Session.Execute:
//  1. If unauthenticated, log in first.
//  2. Send the request and validate the response.
//  3. If the response is invalid, drop to unauthenticated, log in and
//     replay the request once.
//
// At most one login happens per operation, so a router that keeps rejecting
// the session produces an auth error rather than a loop. Transport failures
// are never retried. Calls on one Client are serialized.
//
// # Session ID
//
// The router expects a session ID in every envelope but never issues one.
// Config.SessionID defaults to soap.DefaultSessionID. Firmware that requires
// a server-issued token is not supported.
//
// # Error Handling
//
// Every operation returns *RouterError values. Use IsTransportError,
// IsAuthError, IsBadCredentials, IsParseError and IsValidationError to
// classify them. Auth and parse errors carry the status code, response
// code and body of the response that caused them.
package router
