package utils

import (
	"fmt"
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo describes the client that issued a request
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
	IsBot      bool   `json:"is_bot"`
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

var platforms = []struct{ marker, platform string }{
	{"android", "android"},
	{"iphone os", "ios"},
	{"ios", "ios"},
	{"windows", "windows"},
	{"mac os", "mac"},
	{"chrome os", "chromeos"},
	{"linux", "linux"},
}

// ParseUserAgent extracts device information from a User-Agent header.
// Driver and admin apps send their own agents, so unknown values are common.
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown", Platform: "unknown"}
	}

	parser := ua.New(userAgent)
	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Browser:    "Unknown",
		Platform:   "unknown",
		IsBot:      parser.Bot(),
	}

	if os := parser.OSInfo(); os.Name != "" {
		info.OS = strings.TrimSpace(os.Name + " " + os.Version)
		lower := strings.ToLower(os.Name)
		for _, p := range platforms {
			if strings.Contains(lower, p.marker) {
				info.Platform = p.platform
				break
			}
		}
	}

	if name, _ := parser.Browser(); name != "" {
		info.Browser = name
	}

	if parser.Mobile() {
		info.DeviceType = "mobile"
		lower := strings.ToLower(userAgent)
		for _, marker := range tabletMarkers {
			if strings.Contains(lower, marker) {
				info.DeviceType = "tablet"
				break
			}
		}
	}

	return info
}

// Summary renders the device for activity log descriptions
func (d DeviceInfo) Summary() string {
	if d.DeviceType == "unknown" {
		return "unknown device"
	}
	return fmt.Sprintf("%s on %s (%s)", d.Browser, d.OS, d.DeviceType)
}
