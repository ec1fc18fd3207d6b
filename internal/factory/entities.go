package factory

import (
	"sort"
	"strings"

	"entityforge/internal/entity"
)

// Entities maps entity names to synthesized types.
type Entities map[string]*entity.Type

// Names returns entity names, sorted.
func (e Entities) Names() []string {
	out := make([]string, 0, len(e))
	for n := range e {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lookup finds an entity by exact name, falling back to a case-insensitive match when exactly
// one entity matches.
func (e Entities) Lookup(name string) (*entity.Type, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if t, ok := e[name]; ok {
		return t, true
	}
	var found *entity.Type
	for n, t := range e {
		if strings.EqualFold(n, name) {
			if found != nil {
				return nil, false
			}
			found = t
		}
	}
	return found, found != nil
}
