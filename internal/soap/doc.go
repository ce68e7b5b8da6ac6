// Package soap builds request envelopes for the router's SOAP control API
// and validates the responses it returns.
//
// The router exposes its management API at http://<host>:<port>/soap/server_sa/.
// Every call is an HTTP POST carrying a fixed-schema SOAP envelope and a
// SOAPAction header naming the remote operation as a URN, for example:
//
//	urn:NETGEAR-ROUTER:service:DeviceInfo:1#GetAttachDevice
//
// # Envelopes
//
// Envelope builders are pure functions. They take a session ID plus the
// action-specific parameters and return the serialized body:
//
//	body := soap.AttachDevicesEnvelope(soap.DefaultSessionID)
//	body := soap.SetBlockDeviceEnvelope(sessionID, "AA:BB:CC:DD:EE:01", "Block")
//
// Building never fails. Only the login credentials are escaped; every other
// placeholder is expected to be exactly the string the router wants.
//
// # Validation
//
// Success is never signalled by the HTTP status alone. A response is valid
// only when the status is 200 and the body carries the success marker:
//
//	<ResponseCode>000</ResponseCode>
//
// IsValid is a pure predicate. It does not log or retry; callers decide what
// an invalid response means.
package soap
