package soap

import "strings"

// Action identifiers sent in the SOAPAction header.
const (
	ActionLogin                 = "urn:NETGEAR-ROUTER:service:ParentalControl:1#Authenticate"
	ActionGetAttachedDevices    = "urn:NETGEAR-ROUTER:service:DeviceInfo:1#GetAttachDevice"
	ActionGetAttachedDevices2   = "urn:NETGEAR-ROUTER:service:DeviceInfo:1#GetAttachDevice2"
	ActionGetTrafficMeter       = "urn:NETGEAR-ROUTER:service:DeviceConfig:1#GetTrafficMeterStatistics"
	ActionConfigurationStarted  = "urn:NETGEAR-ROUTER:service:DeviceConfig:1#ConfigurationStarted"
	ActionConfigurationFinished = "urn:NETGEAR-ROUTER:service:DeviceConfig:1#ConfigurationFinished"
	ActionSetBlockDevice        = "urn:NETGEAR-ROUTER:service:DeviceConfig:1#SetBlockDeviceByMAC"
)

// DefaultSessionID is the session token sent with every request.
//
// The router never issues this value; the same constant is used for every
// session. Firmware that insists on a server-issued token will reject it.
const DefaultSessionID = "A7D88AE69687E58D9A00"

// ActionName returns the operation name after the '#' of an action URN,
// e.g. "GetAttachDevice". Unknown formats are returned unchanged.
func ActionName(action string) string {
	if i := strings.LastIndex(action, "#"); i >= 0 && i < len(action)-1 {
		return action[i+1:]
	}
	return action
}
