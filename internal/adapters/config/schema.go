package config

// Projectfile represents the structure of the ecow.yaml project file.
type Projectfile struct {
	CacheDir    string   `yaml:"cache_dir"`
	Concurrency *int     `yaml:"concurrency"`
	FailFast    *bool    `yaml:"fail_fast"`
	Unit        *UnitDTO `yaml:"unit"`
}

// UnitDTO represents a unit definition in the project file.
// Children are listed under units in build order.
type UnitDTO struct {
	Kind    string            `yaml:"kind"`
	Name    string            `yaml:"name"`
	Sources []string          `yaml:"sources"`
	Cmd     []string          `yaml:"cmd"`
	Outputs []string          `yaml:"outputs"`
	Env     map[string]string `yaml:"env"`
	Dir     string            `yaml:"dir"`
	Units   []UnitDTO         `yaml:"units"`
}
