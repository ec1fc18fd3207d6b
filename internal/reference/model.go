package reference

// TypeGroup is one catalog file: a named group of extension type bindings.
type TypeGroup struct {
	Name  string     `yaml:"name"`
	Types []TypeItem `yaml:"types"`
}

type TypeItem struct {
	Name string `yaml:"name"` // name used in templates, e.g. numpy.float16
	Kind string `yaml:"kind"` // Go kind, see resolver.GoKinds
	Doc  string `yaml:"doc,omitempty"`
}
