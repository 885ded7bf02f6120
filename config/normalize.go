package config

import (
	"fmt"
	"net"
	"strings"
)

// GatewayAddress is a pseudo address which is resolved to the default gateway.
const GatewayAddress = "gateway"

const (
	maxFPS       = 240
	maxPoints    = 10000
	maxDots      = 8192
	maxThickness = 32
)

// Normalize replaces invalid values with defaults. It returns one message per
// corrected value. Servers with an invalid address are disabled, not removed.
func (c *Config) Normalize() []string {
	d := Default()
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if c.Visual.MaxPoints < 2 {
		warn("visual_config.max_points must be at least 2, using %d", d.Visual.MaxPoints)
		c.Visual.MaxPoints = d.Visual.MaxPoints
	}
	if c.Visual.MaxPoints > maxPoints {
		warn("visual_config.max_points must be at most %d, using %d", maxPoints, maxPoints)
		c.Visual.MaxPoints = maxPoints
	}
	if c.Window.Width > maxDots {
		warn("window_config.width must be at most %d, using %d", maxDots, maxDots)
		c.Window.Width = maxDots
	}
	if c.Window.Height > maxDots {
		warn("window_config.height must be at most %d, using %d", maxDots, maxDots)
		c.Window.Height = maxDots
	}
	if c.Visual.FPS < 1 || c.Visual.FPS > maxFPS {
		warn("visual_config.fps must be between 1 and %d, using %d", maxFPS, d.Visual.FPS)
		c.Visual.FPS = d.Visual.FPS
	}
	if c.Visual.ScaleDecayRate <= 0 || c.Visual.ScaleDecayRate > 1 {
		warn("visual_config.scale_decay_rate must be in (0, 1], using %v", d.Visual.ScaleDecayRate)
		c.Visual.ScaleDecayRate = d.Visual.ScaleDecayRate
	}
	if c.Visual.ScaleHeadroom < 1 {
		warn("visual_config.scale_headroom must be at least 1, using %v", d.Visual.ScaleHeadroom)
		c.Visual.ScaleHeadroom = d.Visual.ScaleHeadroom
	}
	if c.Visual.PingInterval <= 0 {
		warn("visual_config.ping_interval must be positive, using %s", d.Visual.PingInterval.Duration())
		c.Visual.PingInterval = d.Visual.PingInterval
	}
	if c.Visual.PingTimeout <= 0 {
		warn("visual_config.ping_timeout must be positive, using %s", d.Visual.PingTimeout.Duration())
		c.Visual.PingTimeout = d.Visual.PingTimeout
	}
	if c.Visual.PingTimeout > c.Visual.PingInterval {
		warn("visual_config.ping_timeout exceeds ping_interval, using %s", c.Visual.PingInterval.Duration())
		c.Visual.PingTimeout = c.Visual.PingInterval
	}
	if c.Visual.GuideLinesThickness < 1 {
		warn("visual_config.guide_lines_thickness must be positive, using %d", d.Visual.GuideLinesThickness)
		c.Visual.GuideLinesThickness = d.Visual.GuideLinesThickness
	}
	if c.Visual.GuideLinesThickness > maxThickness {
		warn("visual_config.guide_lines_thickness must be at most %d, using %d", maxThickness, maxThickness)
		c.Visual.GuideLinesThickness = maxThickness
	}
	if c.Visual.GuideLinesLength < 0 {
		warn("visual_config.guide_lines_length must not be negative, using %d", d.Visual.GuideLinesLength)
		c.Visual.GuideLinesLength = d.Visual.GuideLinesLength
	}
	if limit := c.maxWidth(); c.Visual.GuideLinesLength > limit {
		warn("visual_config.guide_lines_length must be at most %d, using %d", limit, limit)
		c.Visual.GuideLinesLength = limit
	}

	switch c.Probe.Backend {
	case BackendDigineo, BackendProbing:
	case "":
		c.Probe.Backend = d.Probe.Backend
	default:
		warn("probe_config.backend %q is unknown, using %s", c.Probe.Backend, d.Probe.Backend)
		c.Probe.Backend = d.Probe.Backend
	}
	if c.Probe.PayloadSize > 65500 {
		warn("probe_config.payload_size must be at most 65500, using %d", d.Probe.PayloadSize)
		c.Probe.PayloadSize = d.Probe.PayloadSize
	}
	if c.Probe.DNSRefresh < 0 {
		c.Probe.DNSRefresh = 0
	}

	warnings = append(warnings, c.normalizeServers()...)
	return warnings
}

// maxWidth is the widest the canvas can get in dots.
func (c *Config) maxWidth() int {
	if c.Window.Width > 0 {
		return c.Window.Width
	}
	return maxDots
}

func (c *Config) normalizeServers() []string {
	var warnings []string
	seen := make(map[string]bool)

	for i := range c.Servers {
		s := &c.Servers[i]
		s.Address = strings.TrimSpace(s.Address)

		if s.autoColor {
			s.Color = Palette[i%len(Palette)]
			s.autoColor = false
		}
		if s.LineThickness < 1 {
			warnings = append(warnings, fmt.Sprintf("server %q: line_thickness must be positive, using %d", s.Address, defaultLineThickness))
			s.LineThickness = defaultLineThickness
		}
		if s.LineThickness > maxThickness {
			warnings = append(warnings, fmt.Sprintf("server %q: line_thickness must be at most %d, using %d", s.Address, maxThickness, maxThickness))
			s.LineThickness = maxThickness
		}
		if !s.Enabled {
			continue
		}

		if !ValidAddress(s.Address) {
			warnings = append(warnings, fmt.Sprintf("server %q: invalid address, disabling", s.Address))
			s.Enabled = false
			continue
		}
		if seen[s.Address] {
			warnings = append(warnings, fmt.Sprintf("server %q: duplicate address, disabling", s.Address))
			s.Enabled = false
			continue
		}
		seen[s.Address] = true
	}

	return warnings
}

// ValidAddress reports whether addr is an IP address, a syntactically valid
// host name or the gateway pseudo address.
func ValidAddress(addr string) bool {
	if addr == GatewayAddress {
		return true
	}
	if net.ParseIP(addr) != nil {
		return true
	}

	return validHostname(addr)
}

func validHostname(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if len(host) == 0 || len(host) > 253 {
		return false
	}

	labels := strings.Split(host, ".")
	if strings.Trim(labels[len(labels)-1], "0123456789") == "" {
		// a numeric top label is a mistyped IP address
		return false
	}

	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				return false
			}
		}
	}

	return true
}
