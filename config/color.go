package config

import "fmt"

// Color is a RGB triple, written as [r, g, b].
type Color struct {
	R, G, B uint8
}

// String returns the color in #rrggbb notation.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (c *Color) UnmarshalJSON(b []byte) error {
	var v []int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid color %s: %w", string(b), err)
	}
	return c.set(v)
}

// MarshalJSON implements json.Marshaler interface.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.values())
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v []int
	if err := unmarshal(&v); err != nil {
		return err
	}
	return c.set(v)
}

// MarshalYAML implements yaml.Marshaler interface.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.values(), nil
}

func (c Color) values() []int {
	return []int{int(c.R), int(c.G), int(c.B)}
}

// set accepts 3 components; a 4th (alpha) component is ignored.
func (c *Color) set(v []int) error {
	if len(v) != 3 && len(v) != 4 {
		return fmt.Errorf("color needs 3 components, got %d", len(v))
	}
	for _, x := range v[:3] {
		if x < 0 || x > 255 {
			return fmt.Errorf("color component %d out of range", x)
		}
	}
	c.R, c.G, c.B = uint8(v[0]), uint8(v[1]), uint8(v[2])
	return nil
}
