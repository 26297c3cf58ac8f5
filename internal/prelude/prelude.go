// Package prelude loads the standard-library extern manifest: a YAML file
// describing the C functions every compilation can call without an
// explicit ambient declaration. Grounded on the teacher's YAML-based
// config/manifest loading (gopkg.in/yaml.v3), adapted from module
// configuration to an extern-signature descriptor.
package prelude

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emberc/emberc/internal/emitter"
	"github.com/emberc/emberc/internal/errors"
	"github.com/emberc/emberc/internal/externs"
)

const phase = "prelude"

// paramDoc is one extern parameter's YAML shape.
type paramDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// externDoc is one extern function's YAML shape.
type externDoc struct {
	Name     string     `yaml:"name"`
	Returns  string     `yaml:"returns"`
	Params   []paramDoc `yaml:"params"`
	Variadic bool       `yaml:"variadic"`
}

// manifestDoc is the top-level YAML document shape.
type manifestDoc struct {
	Externs []externDoc `yaml:"externs"`
}

// Load parses the descriptor at path and returns its extern signatures.
func Load(path string) ([]externs.Signature, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(phase, errors.RES001, "prelude manifest not found: "+path)
	}

	var doc manifestDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.New(phase, errors.RES002, "malformed prelude manifest "+path+": "+err.Error())
	}

	sigs := make([]externs.Signature, 0, len(doc.Externs))
	for _, e := range doc.Externs {
		params := make([]emitter.Param, 0, len(e.Params))
		for _, p := range e.Params {
			params = append(params, emitter.Param{Name: p.Name, IRType: p.Type})
		}
		sigs = append(sigs, externs.Signature{
			Name:     e.Name,
			ReturnIR: e.Returns,
			Params:   params,
			Variadic: e.Variadic,
		})
	}
	return sigs, nil
}

// LoadInto parses the descriptor at path and registers every signature into
// table.
func LoadInto(path string, table *externs.Table) error {
	sigs, err := Load(path)
	if err != nil {
		return err
	}
	for _, sig := range sigs {
		table.Register(sig)
	}
	return nil
}
