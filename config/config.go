package config

import (
	"fmt"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	yaml "gopkg.in/yaml.v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config represents the configuration of the graph window, its visuals and the pinged servers
type Config struct {
	Window  WindowConfig   `json:"window_config" yaml:"window_config"`
	Visual  VisualConfig   `json:"visual_config" yaml:"visual_config"`
	Servers []ServerConfig `json:"servers" yaml:"servers"`
	Probe   ProbeConfig    `json:"probe_config" yaml:"probe_config"`
}

// WindowConfig describes the drawing surface. Sizes are in dots; a width or
// height <= 0 makes the graph fill the terminal.
type WindowConfig struct {
	Width           int   `json:"width" yaml:"width"`
	Height          int   `json:"height" yaml:"height"`
	Transparent     bool  `json:"transparent" yaml:"transparent"`
	Borderless      bool  `json:"borderless" yaml:"borderless"`
	AlwaysOnTop     bool  `json:"always_on_top" yaml:"always_on_top"`
	BackgroundColor Color `json:"background_color" yaml:"background_color"`
	PaddingLeft     int   `json:"padding_left" yaml:"padding_left"`
	PaddingRight    int   `json:"padding_right" yaml:"padding_right"`
	PaddingTop      int   `json:"padding_top" yaml:"padding_top"`
	PaddingBottom   int   `json:"padding_bottom" yaml:"padding_bottom"`
}

// VisualConfig holds everything that affects what is drawn and how often.
type VisualConfig struct {
	MaxPoints           int     `json:"max_points" yaml:"max_points"`
	FPS                 int     `json:"fps" yaml:"fps"`
	FontSize            int     `json:"font_size" yaml:"font_size"`
	PingTextOffset      Offset  `json:"ping_text_offset" yaml:"ping_text_offset"`
	ScaleDecayRate      float64 `json:"scale_decay_rate" yaml:"scale_decay_rate"`
	ScaleHeadroom       float64 `json:"scale_headroom" yaml:"scale_headroom"`
	TextColor           Color   `json:"text_color" yaml:"text_color"`
	PingInterval        Seconds `json:"ping_interval" yaml:"ping_interval"`
	PingTimeout         Seconds `json:"ping_timeout" yaml:"ping_timeout"`
	ShowGuides          bool    `json:"show_guides" yaml:"show_guides"`
	GuideLinesColor     Color   `json:"guide_lines_color" yaml:"guide_lines_color"`
	GuideLinesThickness int     `json:"guide_lines_thickness" yaml:"guide_lines_thickness"`
	GuideLinesLength    int     `json:"guide_lines_length" yaml:"guide_lines_length"`
	GuideLevels         []int   `json:"guide_levels" yaml:"guide_levels"`
	ShowGuideLabels     bool    `json:"show_guide_labels" yaml:"show_guide_labels"`
}

// ProbeConfig selects and tunes the ICMP implementation.
type ProbeConfig struct {
	Backend     string  `json:"backend" yaml:"backend"`
	Privileged  bool    `json:"privileged" yaml:"privileged"`
	PayloadSize uint16  `json:"payload_size" yaml:"payload_size"`
	DNSRefresh  Seconds `json:"dns_refresh" yaml:"dns_refresh"`
	Nameserver  string  `json:"nameserver" yaml:"nameserver"`
	Tailnet     string  `json:"tailnet" yaml:"tailnet"`
}

// Offset is a (x, y) displacement in dots, encoded as a two element array.
type Offset struct {
	X, Y int
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (o *Offset) UnmarshalJSON(b []byte) error {
	var v []int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return o.set(v)
}

// MarshalJSON implements json.Marshaler interface.
func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{o.X, o.Y})
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (o *Offset) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v []int
	if err := unmarshal(&v); err != nil {
		return err
	}
	return o.set(v)
}

// MarshalYAML implements yaml.Marshaler interface.
func (o Offset) MarshalYAML() (interface{}, error) {
	return []int{o.X, o.Y}, nil
}

func (o *Offset) set(v []int) error {
	if len(v) != 2 {
		return fmt.Errorf("offset needs 2 values, got %d", len(v))
	}
	o.X, o.Y = v[0], v[1]
	return nil
}

// Seconds is a duration written as a number of seconds. A Go duration string
// ("750ms") is accepted as well.
type Seconds time.Duration

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Seconds) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		s.setSeconds(f)
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return s.parse(str)
}

// MarshalJSON implements json.Marshaler interface.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(s.Duration().Seconds(), 'f', -1, 64)), nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (s *Seconds) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var f float64
	if err := unmarshal(&f); err == nil {
		s.setSeconds(f)
		return nil
	}

	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	return s.parse(str)
}

// MarshalYAML implements yaml.Marshaler interface.
func (s Seconds) MarshalYAML() (interface{}, error) {
	return s.Duration().Seconds(), nil
}

// Duration is a convenience getter.
func (s Seconds) Duration() time.Duration {
	return time.Duration(s)
}

// Set updates the underlying duration.
func (s *Seconds) Set(d time.Duration) {
	*s = Seconds(d)
}

func (s *Seconds) setSeconds(f float64) {
	*s = Seconds(f * float64(time.Second))
}

func (s *Seconds) parse(str string) error {
	d, err := time.ParseDuration(str)
	if err != nil {
		return err
	}
	*s = Seconds(d)
	return nil
}

// FromJSON reads JSON from reader and unmarshals it over the defaults
func FromJSON(r io.Reader) (*Config, error) {
	c := decodeTarget()
	if err := json.NewDecoder(r).Decode(c); err != nil {
		return nil, err
	}
	c.fillUnset()
	return c, nil
}

// FromYAML reads YAML from reader and unmarshals it over the defaults
func FromYAML(r io.Reader) (*Config, error) {
	c := decodeTarget()
	if err := yaml.NewDecoder(r).Decode(c); err != nil {
		return nil, err
	}
	c.fillUnset()
	return c, nil
}

// decodeTarget returns the defaults with the list values cleared, so a list
// present in the document replaces the default instead of merging into it.
func decodeTarget() *Config {
	c := Default()
	c.Servers = nil
	c.Visual.GuideLevels = nil
	return c
}

func (c *Config) fillUnset() {
	d := Default()
	if c.Servers == nil {
		c.Servers = d.Servers
	}
	if c.Visual.GuideLevels == nil {
		c.Visual.GuideLevels = d.Visual.GuideLevels
	}
}

// EnabledServers returns the servers which are probed and drawn, in configuration order.
func (c *Config) EnabledServers() []ServerConfig {
	result := make([]ServerConfig, 0, len(c.Servers))
	for _, s := range c.Servers {
		if s.Enabled {
			result = append(result, s)
		}
	}
	return result
}

// ScaleFloor is the smallest axis scale in millis: the highest guide level
// plus headroom, so every guide line stays visible.
func (c *Config) ScaleFloor() float64 {
	highest := 0
	for _, l := range c.Visual.GuideLevels {
		if l > highest {
			highest = l
		}
	}
	if highest <= 0 {
		return 1
	}
	return float64(highest) * c.Visual.ScaleHeadroom
}
