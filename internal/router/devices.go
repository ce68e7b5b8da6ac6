package router

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/muurk/routerctl/internal/soap"
)

// AccessState is a device's allow/block status on the router
type AccessState string

const (
	AccessAllow   AccessState = "Allow"
	AccessBlock   AccessState = "Block"
	AccessUnknown AccessState = "unknown"
)

// ParseAccessState accepts "allow" or "block" in any case.
func ParseAccessState(s string) (AccessState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return AccessAllow, nil
	case "block":
		return AccessBlock, nil
	default:
		return AccessUnknown, NewValidationError(fmt.Sprintf("invalid access state %q (expected Allow or Block)", s))
	}
}

// ConnectionUnknown is reported when the router omits the link type
const ConnectionUnknown = "unknown"

// Device is an attached device as reported by GetAttachDevice.
// Older firmware omits the link fields and the access state; those fields
// then hold ConnectionUnknown, 0, 0 and AccessUnknown.
type Device struct {
	IP             string      `json:"IP"`
	Name           string      `json:"Name"`
	MAC            string      `json:"MAC"`
	ConnectionType string      `json:"ConnectionType"` // "wired", "wireless", "2.4GHz", ...
	LinkSpeed      int         `json:"Linkspeed"`      // Mbps, 0 if unknown
	SignalStrength int         `json:"SignalStrength"` // 0-100
	AllowOrBlock   AccessState `json:"AllowOrBlock"`
}

// DeviceDetail is an attached device as reported by GetAttachDevice2
type DeviceDetail struct {
	Device
	NameUserSet       bool    `json:"NameUserSet"`
	SSID              string  `json:"SSID"`
	DeviceType        int     `json:"DeviceType"`
	DeviceTypeUserSet bool    `json:"DeviceTypeUserSet"`
	Upload            float64 `json:"Upload"`
	Download          float64 `json:"Download"`
	QosPriority       int     `json:"QosPriority"` // 1 (highest) to 4
	Schedule          string  `json:"Schedule"`
}

var attachedDevicesRegex = regexp.MustCompile(`<NewAttachDevice>(.*)</NewAttachDevice>`)

const (
	unknownDeviceEncoded = "&lt;unknown&gt;"
	unknownDeviceDecoded = "<unknown>"
)

// entryShape classifies a legacy device entry by the fields it carries
type entryShape int

const (
	shapeBasic      entryShape = iota // index;ip;name;mac
	shapeWithLink                     // + connection type;link speed;signal strength
	shapeWithAccess                   // + allow/block
)

const (
	minEntryFields    = 4
	linkEntryFields   = 7
	accessEntryFields = 8
)

func classifyEntry(fields []string) (entryShape, bool) {
	switch {
	case len(fields) >= accessEntryFields:
		return shapeWithAccess, true
	case len(fields) >= linkEntryFields:
		return shapeWithLink, true
	case len(fields) >= minEntryFields:
		return shapeBasic, true
	default:
		return shapeBasic, false
	}
}

// parseAttachedDevices parses the legacy "count@entry@entry..." list
func parseAttachedDevices(body string) ([]Device, error) {
	action := soap.ActionName(soap.ActionGetAttachedDevices)

	m := attachedDevicesRegex.FindStringSubmatch(body)
	if m == nil {
		return nil, NewParseError(action, "response has no NewAttachDevice element", body, nil)
	}

	decoded := strings.ReplaceAll(m[1], unknownDeviceEncoded, unknownDeviceDecoded)

	parts := strings.Split(decoded, "@")
	if len(parts) < 2 {
		return nil, NewParseError(action, "device list has no entries", body, nil)
	}

	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count <= 0 {
		return nil, NewParseError(action, fmt.Sprintf("invalid device count header %q", parts[0]), body, err)
	}

	devices := make([]Device, 0, len(parts)-1)
	for i, entry := range parts[1:] {
		fields := strings.Split(entry, ";")

		shape, ok := classifyEntry(fields)
		if !ok {
			return nil, NewParseError(action,
				fmt.Sprintf("device entry %d has %d fields, want at least %d", i+1, len(fields), minEntryFields),
				body, nil)
		}

		device := Device{
			IP:             fields[1],
			Name:           fields[2],
			MAC:            fields[3],
			ConnectionType: ConnectionUnknown,
			AllowOrBlock:   AccessUnknown,
		}

		if shape >= shapeWithLink {
			device.ConnectionType = fields[4]
			device.LinkSpeed = atoiOrZero(fields[5])
			device.SignalStrength = atoiOrZero(fields[6])
		}
		if shape >= shapeWithAccess {
			device.AllowOrBlock = AccessState(fields[7])
		}

		devices = append(devices, device)
	}

	return devices, nil
}

// atoiOrZero parses the optional numeric fields; wired entries report an
// empty or non-numeric link speed.
func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

type attachDevice2Envelope struct {
	Body *attachDevice2Body `xml:"Body"`
}

type attachDevice2Body struct {
	Response *attachDevice2Response `xml:"GetAttachDevice2Response"`
}

type attachDevice2Response struct {
	List *attachDevice2List `xml:"NewAttachDevice"`
}

type attachDevice2List struct {
	Devices []deviceXML `xml:"Device"`
}

// deviceXML mirrors a <Device> element. Every value arrives as text.
type deviceXML struct {
	IP                string `xml:"IP"`
	Name              string `xml:"Name"`
	NameUserSet       string `xml:"NameUserSet"`
	MAC               string `xml:"MAC"`
	ConnectionType    string `xml:"ConnectionType"`
	SSID              string `xml:"SSID"`
	Linkspeed         string `xml:"Linkspeed"`
	SignalStrength    string `xml:"SignalStrength"`
	AllowOrBlock      string `xml:"AllowOrBlock"`
	Schedule          string `xml:"Schedule"`
	DeviceType        string `xml:"DeviceType"`
	DeviceTypeUserSet string `xml:"DeviceTypeUserSet"`
	Upload            string `xml:"Upload"`
	Download          string `xml:"Download"`
	QosPriority       string `xml:"QosPriority"`
}

// parseAttachedDevices2 decodes the structured GetAttachDevice2 response
func parseAttachedDevices2(body string) ([]DeviceDetail, error) {
	action := soap.ActionName(soap.ActionGetAttachedDevices2)

	var env attachDevice2Envelope
	dec := xml.NewDecoder(bytes.NewReader([]byte(body)))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&env); err != nil {
		return nil, NewParseError(action, "failed to decode response XML", body, err)
	}

	if env.Body == nil || env.Body.Response == nil || env.Body.Response.List == nil {
		return nil, NewParseError(action, "response has no NewAttachDevice element", body, nil)
	}

	entries := env.Body.Response.List.Devices
	if len(entries) == 0 {
		return nil, NewParseError(action, "device list is empty", body, nil)
	}

	devices := make([]DeviceDetail, 0, len(entries))
	for i, e := range entries {
		d, err := e.toDetail()
		if err != nil {
			return nil, NewParseError(action, fmt.Sprintf("device %d has an invalid field", i+1), body, err)
		}
		devices = append(devices, d)
	}

	return devices, nil
}

func (e deviceXML) toDetail() (DeviceDetail, error) {
	var (
		d   DeviceDetail
		err error
	)

	d.IP = strings.TrimSpace(e.IP)
	d.Name = e.Name
	d.MAC = strings.TrimSpace(e.MAC)
	d.ConnectionType = e.ConnectionType
	d.SSID = e.SSID
	d.Schedule = e.Schedule
	d.AllowOrBlock = AccessState(strings.TrimSpace(e.AllowOrBlock))
	if d.AllowOrBlock == "" {
		d.AllowOrBlock = AccessUnknown
	}

	if d.NameUserSet, err = boolField("NameUserSet", e.NameUserSet); err != nil {
		return d, err
	}
	if d.DeviceTypeUserSet, err = boolField("DeviceTypeUserSet", e.DeviceTypeUserSet); err != nil {
		return d, err
	}
	if d.LinkSpeed, err = intField("Linkspeed", e.Linkspeed); err != nil {
		return d, err
	}
	if d.SignalStrength, err = intField("SignalStrength", e.SignalStrength); err != nil {
		return d, err
	}
	if d.DeviceType, err = intField("DeviceType", e.DeviceType); err != nil {
		return d, err
	}
	if d.QosPriority, err = intField("QosPriority", e.QosPriority); err != nil {
		return d, err
	}
	if d.Upload, err = floatField("Upload", e.Upload); err != nil {
		return d, err
	}
	if d.Download, err = floatField("Download", e.Download); err != nil {
		return d, err
	}

	return d, nil
}

func boolField(name, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true, nil
	case "false", "":
		return false, nil
	default:
		return false, fmt.Errorf("%s: %q is not a boolean", name, v)
	}
}

func intField(name, v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, v)
	}
	return n, nil
}

func floatField(name, v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, v)
	}
	return f, nil
}
