package router

import (
	"fmt"
	"sort"
	"strings"
)

// CurrentSetting is the key/value information the router publishes
// without authentication at /currentsetting.htm.
type CurrentSetting map[string]string

// Model returns the router model, e.g. "R7000"
func (cs CurrentSetting) Model() string {
	return cs["Model"]
}

// Firmware returns the firmware version string
func (cs CurrentSetting) Firmware() string {
	return cs["Firmware"]
}

// SOAPVersion returns the SOAP API version the firmware implements
func (cs CurrentSetting) SOAPVersion() string {
	return cs["SOAPVersion"]
}

// LoginMethod returns the advertised login method, if any
func (cs CurrentSetting) LoginMethod() string {
	return cs["LoginMethod"]
}

// Summary returns a one-line summary of the router
func (cs CurrentSetting) Summary() string {
	return fmt.Sprintf("%s (firmware %s, SOAP %s)", cs.Model(), cs.Firmware(), cs.SOAPVersion())
}

// FormatDetailed returns every key sorted alphabetically
func (cs CurrentSetting) FormatDetailed() string {
	keys := make([]string, 0, len(cs))
	for k := range cs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("=== Router Information ===\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%-26s %s\n", k+":", cs[k]))
	}
	return b.String()
}

// parseCurrentSetting parses "Key=Value" lines. A body that carries
// neither SOAPVersion nor Model does not come from a supported router.
func parseCurrentSetting(body string) (CurrentSetting, error) {
	if !strings.Contains(body, "SOAPVersion=") && !strings.Contains(body, "Model=") {
		return nil, NewParseError("currentsetting", "this is not a valid Netgear router", body, nil)
	}

	setting := make(CurrentSetting)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		setting[key] = strings.TrimSpace(value)
	}

	return setting, nil
}
