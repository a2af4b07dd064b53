package model

// RuleProfile is a named set of layer rules for one fabrication process.
// A rule with Layer "*" applies to whatever layer is being checked.
type RuleProfile struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	IsBuiltIn   bool        `json:"is_built_in" yaml:"-"`
	Rules       []LayerRule `json:"rules" yaml:"rules"`
}

// Built-in rule profiles
var RuleProfiles = []RuleProfile{
	{
		Name:        "Contact Lithography",
		Description: "UV contact/proximity aligner, chrome-on-glass mask",
		IsBuiltIn:   true,
		Rules:       []LayerRule{{Layer: "*", MinFeatureSize: 2.0, MinSpacing: 2.0}},
	},
	{
		Name:        "Laser Writer",
		Description: "Direct-write laser lithography",
		IsBuiltIn:   true,
		Rules:       []LayerRule{{Layer: "*", MinFeatureSize: 1.0, MinSpacing: 1.0}},
	},
	{
		Name:        "E-Beam",
		Description: "Electron-beam lithography",
		IsBuiltIn:   true,
		Rules:       []LayerRule{{Layer: "*", MinFeatureSize: 0.1, MinSpacing: 0.1}},
	},
	{
		Name:        "Printed Circuit",
		Description: "Standard PCB fab, 6 mil trace/space",
		IsBuiltIn:   true,
		Rules:       []LayerRule{{Layer: "*", MinFeatureSize: 152.4, MinSpacing: 152.4}},
	},
}

// GetRuleProfile returns a profile by name, or the first built-in profile if
// not found.
func GetRuleProfile(name string) RuleProfile {
	for _, p := range RuleProfiles {
		if p.Name == name {
			return p
		}
	}
	return RuleProfiles[0]
}

// GetRuleProfileNames returns the names of all built-in profiles.
func GetRuleProfileNames() []string {
	var names []string
	for _, p := range RuleProfiles {
		names = append(names, p.Name)
	}
	return names
}
