package model

import "errors"

// OutputConfig lists which artefacts a run writes next to the layout.
type OutputConfig struct {
	Directory string `json:"directory" yaml:"directory"`
	DXF       bool   `json:"dxf" yaml:"dxf"`
	PDF       bool   `json:"pdf" yaml:"pdf"`
	PortTable bool   `json:"port_table" yaml:"port_table"` // xlsx
	PortMap   bool   `json:"port_map" yaml:"port_map"`     // QR-labelled PDF
}

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	Escape EscapeSettings `json:"escape" yaml:"escape"`
	Search SearchSettings `json:"search" yaml:"search"`
	DRC    DRCSettings    `json:"drc" yaml:"drc"`
	Output OutputConfig   `json:"output" yaml:"output"`

	// Layers registered in every new layout, in number order.
	Layers []Layer `json:"layers" yaml:"layers"`

	RecentLayouts []string `json:"recent_layouts" yaml:"recent_layouts"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Escape: DefaultEscapeSettings(),
		Search: DefaultSearchSettings(),
		DRC:    DefaultDRCSettings(),
		Output: OutputConfig{
			Directory: ".",
			DXF:       true,
			PDF:       true,
			PortTable: true,
			PortMap:   false,
		},
		Layers: []Layer{
			{Name: "Metal", Number: 1, Description: "Routing metal"},
			{Name: "Pads", Number: 2, Description: "Bond pad openings"},
			{Name: "Keepout", Number: 10, Description: "Routing obstacles"},
		},
		RecentLayouts: []string{},
	}
}

// Validate validates every settings section.
func (c AppConfig) Validate() error {
	return errors.Join(c.Escape.Validate(), c.Search.Validate(), c.DRC.Validate())
}

// LayerNumber returns the configured number for a layer name.
func (c AppConfig) LayerNumber(name string) (int, bool) {
	for _, l := range c.Layers {
		if l.Name == name {
			return l.Number, true
		}
	}
	return 0, false
}
