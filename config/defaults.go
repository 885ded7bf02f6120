package config

import "time"

const (
	defaultLineThickness = 2
	defaultPayloadSize   = 56

	// BackendDigineo pings through a shared raw socket (github.com/digineo/go-ping).
	BackendDigineo = "digineo"
	// BackendProbing pings with github.com/prometheus-community/pro-bing.
	BackendProbing = "probing"
)

// Palette is used for servers without a configured color.
var Palette = []Color{
	{R: 255, G: 255, B: 0},
	{R: 0, G: 255, B: 255},
	{R: 0, G: 255, B: 0},
	{R: 255, G: 0, B: 255},
	{R: 255, G: 128, B: 0},
	{R: 128, G: 160, B: 255},
}

// Default returns the built-in configuration which is written to disk when
// no usable config file exists.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:           200,
			Height:          100,
			Transparent:     true,
			Borderless:      true,
			AlwaysOnTop:     true,
			BackgroundColor: Color{},
			PaddingLeft:     10,
			PaddingRight:    10,
			PaddingTop:      20,
			PaddingBottom:   0,
		},
		Visual: VisualConfig{
			MaxPoints:           60,
			FPS:                 60,
			FontSize:            14,
			PingTextOffset:      Offset{},
			ScaleDecayRate:      0.95,
			ScaleHeadroom:       1.2,
			TextColor:           Color{R: 255, G: 255, B: 255},
			PingInterval:        Seconds(time.Second),
			PingTimeout:         Seconds(time.Second),
			ShowGuides:          true,
			GuideLinesColor:     Color{R: 128, G: 128, B: 128},
			GuideLinesThickness: 1,
			GuideLinesLength:    10,
			GuideLevels:         []int{50, 100, 150},
			ShowGuideLabels:     true,
		},
		Servers: []ServerConfig{
			{Address: "1.1.1.1", Color: Color{R: 255, G: 255, B: 0}, LineThickness: defaultLineThickness, Enabled: true},
			{Address: "8.8.4.4", Color: Color{R: 0, G: 255, B: 255}, LineThickness: defaultLineThickness, Enabled: true},
		},
		Probe: ProbeConfig{
			Backend:     BackendDigineo,
			Privileged:  true,
			PayloadSize: defaultPayloadSize,
			DNSRefresh:  Seconds(time.Minute),
		},
	}
}
