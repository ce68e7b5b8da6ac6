package soap

import (
	"bytes"
	"encoding/xml"

	"github.com/valyala/fasttemplate"
)

// Template placeholders
const (
	tmplSessionID    = "session_id"
	tmplUsername     = "username"
	tmplPassword     = "password"
	tmplMAC          = "mac"
	tmplAllowOrBlock = "allow_or_block"
)

const envelopeOpen = `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<SOAP-ENV:Envelope xmlns:SOAPSDK1="http://www.w3.org/2001/XMLSchema" xmlns:SOAPSDK2="http://www.w3.org/2001/XMLSchema-instance" xmlns:SOAPSDK3="http://schemas.xmlsoap.org/soap/encoding/" xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
`

const envelopeClose = `</SOAP-ENV:Envelope>`

const sessionHeader = `<SOAP-ENV:Header>
<SessionID>{{session_id}}</SessionID>
</SOAP-ENV:Header>
`

var (
	loginTemplate = fasttemplate.New(envelopeOpen+`<SOAP-ENV:Header>
<SessionID xsi:type="xsd:string" xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance">{{session_id}}</SessionID>
</SOAP-ENV:Header>
<SOAP-ENV:Body>
<Authenticate>
<NewUsername xsi:type="xsd:string" xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance">{{username}}</NewUsername>
<NewPassword xsi:type="xsd:string" xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance">{{password}}</NewPassword>
</Authenticate>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")

	configurationStartedTemplate = fasttemplate.New(envelopeOpen+sessionHeader+`<SOAP-ENV:Body>
<M1:ConfigurationStarted xmlns:M1="urn:NETGEAR-ROUTER:service:DeviceConfig:1">
<NewSessionID>{{session_id}}</NewSessionID>
</M1:ConfigurationStarted>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")

	configurationFinishedTemplate = fasttemplate.New(envelopeOpen+sessionHeader+`<SOAP-ENV:Body>
<M1:ConfigurationFinished xmlns:M1="urn:NETGEAR-ROUTER:service:DeviceConfig:1">
<NewStatus>ChangesApplied</NewStatus>
</M1:ConfigurationFinished>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")

	setBlockDeviceTemplate = fasttemplate.New(envelopeOpen+sessionHeader+`<SOAP-ENV:Body>
<M1:SetBlockDeviceByMAC xmlns:M1="urn:NETGEAR-ROUTER:service:DeviceConfig:1">
<NewAllowOrBlock>{{allow_or_block}}</NewAllowOrBlock>
<NewMACAddress>{{mac}}</NewMACAddress>
</M1:SetBlockDeviceByMAC>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")

	attachDevicesTemplate = fasttemplate.New(envelopeOpen+sessionHeader+`<SOAP-ENV:Body>
<M1:GetAttachDevice xmlns:M1="urn:NETGEAR-ROUTER:service:DeviceInfo:1">
</M1:GetAttachDevice>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")

	attachDevices2Template = fasttemplate.New(envelopeOpen+sessionHeader+`<SOAP-ENV:Body>
<M1:GetAttachDevice2 xmlns:M1="urn:NETGEAR-ROUTER:service:DeviceInfo:1">
</M1:GetAttachDevice2>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")

	trafficMeterTemplate = fasttemplate.New(envelopeOpen+sessionHeader+`<SOAP-ENV:Body>
<M1:GetTrafficMeterStatistics xmlns:M1="urn:NETGEAR-ROUTER:service:DeviceConfig:1"></M1:GetTrafficMeterStatistics>
</SOAP-ENV:Body>
`+envelopeClose, "{{", "}}")
)

// LoginEnvelope builds the Authenticate request body.
// Username and password are escaped as XML character data.
func LoginEnvelope(sessionID, username, password string) string {
	return loginTemplate.ExecuteString(map[string]interface{}{
		tmplSessionID: sessionID,
		tmplUsername:  escapeText(username),
		tmplPassword:  escapeText(password),
	})
}

// ConfigurationStartedEnvelope builds the body that opens a configuration transaction.
func ConfigurationStartedEnvelope(sessionID string) string {
	return configurationStartedTemplate.ExecuteString(map[string]interface{}{
		tmplSessionID: sessionID,
	})
}

// ConfigurationFinishedEnvelope builds the body that commits a configuration transaction.
func ConfigurationFinishedEnvelope(sessionID string) string {
	return configurationFinishedTemplate.ExecuteString(map[string]interface{}{
		tmplSessionID: sessionID,
	})
}

// SetBlockDeviceEnvelope builds the SetBlockDeviceByMAC body.
// allowOrBlock must be "Allow" or "Block"; mac must already be in the
// colon-separated form the router reports.
func SetBlockDeviceEnvelope(sessionID, mac, allowOrBlock string) string {
	return setBlockDeviceTemplate.ExecuteString(map[string]interface{}{
		tmplSessionID:    sessionID,
		tmplMAC:          mac,
		tmplAllowOrBlock: allowOrBlock,
	})
}

// AttachDevicesEnvelope builds the legacy GetAttachDevice body.
func AttachDevicesEnvelope(sessionID string) string {
	return attachDevicesTemplate.ExecuteString(map[string]interface{}{
		tmplSessionID: sessionID,
	})
}

// AttachDevices2Envelope builds the structured GetAttachDevice2 body.
func AttachDevices2Envelope(sessionID string) string {
	return attachDevices2Template.ExecuteString(map[string]interface{}{
		tmplSessionID: sessionID,
	})
}

// TrafficMeterEnvelope builds the GetTrafficMeterStatistics body.
func TrafficMeterEnvelope(sessionID string) string {
	return trafficMeterTemplate.ExecuteString(map[string]interface{}{
		tmplSessionID: sessionID,
	})
}

func escapeText(s string) string {
	var b bytes.Buffer
	// EscapeText only fails when the writer does
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
