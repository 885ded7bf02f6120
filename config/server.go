package config

// ServerConfig describes one pinged server. The address is its identity.
type ServerConfig struct {
	Address       string            `json:"address" yaml:"address"`
	Color         Color             `json:"color" yaml:"color"`
	LineThickness int               `json:"line_thickness" yaml:"line_thickness"`
	Enabled       bool              `json:"enabled" yaml:"enabled"`
	Labels        map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// autoColor is set when the entry did not name a color; Normalize
	// assigns one from the Palette.
	autoColor bool
}

type plainServer ServerConfig

type colorProbe struct {
	Color *Color `json:"color" yaml:"color"`
}

// NewServer returns an enabled server with default line thickness which
// gets its color from the Palette.
func NewServer(address string) ServerConfig {
	s := ServerConfig(newPlainServer())
	s.Address = address
	s.autoColor = true
	return s
}

func newPlainServer() plainServer {
	return plainServer{LineThickness: defaultLineThickness, Enabled: true}
}

// UnmarshalJSON implements json.Unmarshaler interface. A server is either an
// object or just its address.
func (s *ServerConfig) UnmarshalJSON(b []byte) error {
	var addr string
	if err := json.Unmarshal(b, &addr); err == nil {
		*s = ServerConfig(newPlainServer())
		s.Address = addr
		s.autoColor = true
		return nil
	}

	p := newPlainServer()
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var cp colorProbe
	if err := json.Unmarshal(b, &cp); err != nil {
		return err
	}

	*s = ServerConfig(p)
	s.autoColor = cp.Color == nil
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (s *ServerConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var addr string
	if err := unmarshal(&addr); err == nil {
		*s = ServerConfig(newPlainServer())
		s.Address = addr
		s.autoColor = true
		return nil
	}

	p := newPlainServer()
	if err := unmarshal(&p); err != nil {
		return err
	}
	var cp colorProbe
	if err := unmarshal(&cp); err != nil {
		return err
	}

	*s = ServerConfig(p)
	s.autoColor = cp.Color == nil
	return nil
}
