package router

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the device
func (d *Device) Summary() string {
	return fmt.Sprintf("%s (%s) %s [%s]", d.displayName(), d.IP, d.MAC, d.AllowOrBlock)
}

// FormatLink describes the connection, e.g. "wireless 144 Mbps, signal 78%"
func (d *Device) FormatLink() string {
	if d.ConnectionType == ConnectionUnknown && d.LinkSpeed == 0 && d.SignalStrength == 0 {
		return "unknown"
	}
	if d.LinkSpeed == 0 && d.SignalStrength == 0 {
		return d.ConnectionType
	}
	return fmt.Sprintf("%s %d Mbps, signal %d%%", d.ConnectionType, d.LinkSpeed, d.SignalStrength)
}

func (d *Device) displayName() string {
	name := strings.TrimSpace(d.Name)
	if name == "" || name == "--" {
		return unknownDeviceDecoded
	}
	return name
}

// FormatDevicesCompact returns one line per device
func FormatDevicesCompact(devices []Device) string {
	var b strings.Builder
	for _, d := range devices {
		b.WriteString(d.Summary())
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDetailsCompact returns one line per structured device
func FormatDetailsCompact(devices []DeviceDetail) string {
	var b strings.Builder
	for _, d := range devices {
		b.WriteString(d.Summary())
		if d.SSID != "" {
			b.WriteString(fmt.Sprintf(" ssid=%s", d.SSID))
		}
		b.WriteString(fmt.Sprintf(" qos=%d\n", d.QosPriority))
	}
	return b.String()
}
