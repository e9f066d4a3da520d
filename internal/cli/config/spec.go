package config

// Profile is the configuration for modi-cli.
type Profile struct {
	Home          string   `yaml:"home,omitempty"`
	SystemPrefix  string   `yaml:"system_prefix,omitempty"`
	ComponentsDir string   `yaml:"components_dir,omitempty"`
	OverrideDir   string   `yaml:"override_dir,omitempty"`
	Defines       []string `yaml:"defines,omitempty"`
	Output        string   `yaml:"output,omitempty"` // table, json, yaml
}

// Default returns the default profile.
func Default() *Profile {
	return &Profile{
		Output: "table",
	}
}
