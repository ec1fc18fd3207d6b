// Package validate checks templates documents against the entity templates JSON schemas.
package validate

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed schemas/entity_templates.schema.json
	entityTemplatesSchema []byte
	//go:embed schemas/flat_templates.schema.json
	flatTemplatesSchema []byte

	entitySchema = mustCompile("entity_templates", entityTemplatesSchema)
	flatSchema   = mustCompile("flat_templates", flatTemplatesSchema)
)

func mustCompile(name string, doc []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return s
}

// Issue is one schema violation.
type Issue struct {
	Entity  string `json:"entity"`
	Field   string `json:"field"` // dotted path inside the entity template
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	loc := i.Entity
	if i.Field != "" {
		loc += "." + i.Field
	}
	if loc == "" {
		loc = "(root)"
	}
	return fmt.Sprintf("%s: %s (%s)", loc, i.Message, i.Code)
}

// ValidationError carries every violation found in a document, sorted by location.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.String())
	}
	return fmt.Sprintf("templates are invalid: %d issue(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Templates validates a discriminated document (every template declares type simple or compound).
func Templates(raw any) error {
	return run(entitySchema, raw)
}

// FlatTemplates validates a legacy document where every template is a simple entity.
func FlatTemplates(raw any) error {
	return run(flatSchema, raw)
}

func run(schema *gojsonschema.Schema, raw any) error {
	res, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return &ValidationError{Issues: []Issue{{Code: "unreadable", Message: err.Error()}}}
	}
	if res.Valid() {
		return nil
	}
	issues := make([]Issue, 0, len(res.Errors()))
	seen := make(map[Issue]struct{}, len(res.Errors()))
	for _, re := range res.Errors() {
		is := toIssue(re)
		if _, dup := seen[is]; dup {
			continue
		}
		seen[is] = struct{}{}
		issues = append(issues, is)
	}
	sort.Slice(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.Entity != y.Entity {
			return x.Entity < y.Entity
		}
		if x.Field != y.Field {
			return x.Field < y.Field
		}
		if x.Code != y.Code {
			return x.Code < y.Code
		}
		return x.Message < y.Message
	})
	return &ValidationError{Issues: issues}
}

// pathSep cannot occur in a YAML or JSON key read from a templates file.
const pathSep = "\x00"

func toIssue(re gojsonschema.ResultError) Issue {
	parts := strings.Split(re.Context().String(pathSep), pathSep)
	if len(parts) > 0 && parts[0] == gojsonschema.STRING_CONTEXT_ROOT {
		parts = parts[1:]
	}
	is := Issue{Code: re.Type(), Message: re.Description()}
	if len(parts) > 0 {
		is.Entity = parts[0]
		is.Field = strings.Join(parts[1:], ".")
	}
	return is
}
