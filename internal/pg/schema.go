// Package pg exports synthesized entity types as PostgreSQL table definitions.
package pg

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"entityforge/internal/entity"
)

type OnDeletePolicy string

const (
	OnDeleteRestrict OnDeletePolicy = "RESTRICT"
	OnDeleteSetNull  OnDeletePolicy = "SET NULL"
)

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

// naive pluralization, enough for cars, registrations, ...
func plural(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// TableName is the table an entity type is exported to.
func TableName(entityName string) string {
	t := plural(entityName)
	if isReserved(t) {
		t = "e_" + t
	}
	return t
}

func sqlIdent(s string) string {
	return `"` + strings.ReplaceAll(strings.ToLower(s), `"`, `""`) + `"`
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

func baseType(f entity.Field) reflect.Type {
	if f.Type.Kind() == reflect.Pointer {
		return f.Type.Elem()
	}
	return f.Type
}

func mapType(f entity.Field) (string, error) {
	t := baseType(f)
	switch t {
	case timeType:
		return "timestamp with time zone", nil
	case durationType:
		return "interval", nil
	}
	switch t.Kind() {
	case reflect.String:
		return "text", nil
	case reflect.Bool:
		return "boolean", nil
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return "smallint", nil
	case reflect.Int32, reflect.Uint16:
		return "integer", nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return "bigint", nil
	case reflect.Uint, reflect.Uint64:
		return "numeric(20,0)", nil
	case reflect.Float32:
		return "real", nil
	case reflect.Float64:
		return "double precision", nil
	case reflect.Complex64, reflect.Complex128:
		return "text", nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytea", nil
		}
		return "jsonb", nil
	case reflect.Map, reflect.Interface, reflect.Struct:
		return "jsonb", nil
	default:
		return "", fmt.Errorf("no column type for %s", t)
	}
}

func quote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

// defaultLiteral renders a field default as SQL. ok is false when the field has no default or
// the default is null.
func defaultLiteral(f entity.Field) (lit string, ok bool) {
	if !f.HasDefault || f.Default == nil {
		return "", false
	}
	v := reflect.ValueOf(f.Default)
	switch d := f.Default.(type) {
	case time.Time:
		return quote(d.Format(time.RFC3339Nano)), true
	case time.Duration:
		return quote(d.String()), true
	case []byte:
		return `'\x` + hex.EncodeToString(d) + `'::bytea`, true
	}
	switch v.Kind() {
	case reflect.String:
		return quote(v.String()), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), true
	default:
		return quote(fmt.Sprint(f.Default)), true
	}
}

// optionalColumns returns the compound fields fed only by optional sources. Their columns stay
// nullable since a compound record may be built without those sources.
func optionalColumns(t *entity.Type) map[string]bool {
	out := map[string]bool{}
	for _, s := range t.Sources() {
		for _, m := range s.Mappings {
			if s.Optional {
				if _, seen := out[m.Field]; !seen {
					out[m.Field] = true
				}
			} else {
				out[m.Field] = false
			}
		}
	}
	return out
}

// GenerateDDL returns an ordered map of statement groups: schema and tables first, then
// foreign keys from compound tables to the tables of their keyed sources.
func GenerateDDL(schema string, entities map[string]*entity.Type) (map[string]string, error) {
	if strings.TrimSpace(schema) == "" {
		schema = "public"
	}
	out := make(map[string]string, 2)

	names := make([]string, 0, len(entities))
	for n := range entities {
		names = append(names, n)
	}
	sort.Strings(names)

	var phaseA strings.Builder
	fmt.Fprintf(&phaseA, "create schema if not exists %s;\n", sqlIdent(schema))

	type fkStmt struct {
		tbl, name, refTbl string
		cols, refCols     []string
		onDelete          OnDeletePolicy
	}
	var fks []fkStmt
	tables := map[string]string{}

	for _, name := range names {
		t := entities[name]
		tbl := TableName(t.Name())
		if prev, dup := tables[tbl]; dup {
			return nil, fmt.Errorf("%s: table %s already used by %s", name, tbl, prev)
		}
		tables[tbl] = name

		optional := optionalColumns(t)
		seen := map[string]struct{}{}
		var cols []string
		for _, f := range t.Descriptors() {
			lower := strings.ToLower(f.Name)
			if _, exists := seen[lower]; exists {
				return nil, fmt.Errorf("%s: field %q duplicates another column", name, f.Name)
			}
			seen[lower] = struct{}{}

			typ, err := mapType(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
			}
			null := "not null"
			if f.Nullable || optional[f.Name] {
				null = "null"
			}
			def := ""
			if lit, ok := defaultLiteral(f); ok {
				def = " default " + lit
			}
			cols = append(cols, fmt.Sprintf("%s %s %s%s", sqlIdent(f.Name), typ, null, def))
		}
		if keys := t.Keys(); len(keys) > 0 {
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, sqlIdent(k))
			}
			cols = append(cols, fmt.Sprintf("primary key (%s)", strings.Join(parts, ", ")))
		}

		fmt.Fprintf(&phaseA, "create table if not exists %s.%s (\n  %s\n);\n",
			sqlIdent(schema), sqlIdent(tbl), strings.Join(cols, ",\n  "))

		for _, s := range t.Sources() {
			fk, ok := sourceForeignKey(t, s)
			if !ok {
				continue
			}
			policy := OnDeleteRestrict
			if s.Optional && nullableColumns(t, optional, fk) {
				policy = OnDeleteSetNull
			}
			fks = append(fks, fkStmt{
				tbl:      tbl,
				name:     strings.ToLower(t.Name() + "_" + s.Entity.Name() + "_fk"),
				refTbl:   TableName(s.Entity.Name()),
				cols:     fk,
				refCols:  s.Entity.Keys(),
				onDelete: policy,
			})
		}
	}
	out["000_schemas_and_tables"] = phaseA.String()

	var phaseB strings.Builder
	for _, fk := range fks {
		if _, ok := tables[fk.refTbl]; !ok {
			continue
		}
		cols := make([]string, len(fk.cols))
		for i, c := range fk.cols {
			cols[i] = sqlIdent(c)
		}
		refCols := make([]string, len(fk.refCols))
		for i, c := range fk.refCols {
			refCols[i] = sqlIdent(c)
		}
		fmt.Fprintf(&phaseB,
			"alter table %s.%s add constraint %s foreign key (%s) references %s.%s(%s) on delete %s;\n",
			sqlIdent(schema), sqlIdent(fk.tbl),
			sqlIdent(fk.name),
			strings.Join(cols, ", "),
			sqlIdent(schema), sqlIdent(fk.refTbl), strings.Join(refCols, ", "),
			fk.onDelete,
		)
	}
	if phaseB.Len() > 0 {
		out["200_foreign_keys"] = phaseB.String()
	}
	return out, nil
}

func nullableColumns(t *entity.Type, optional map[string]bool, cols []string) bool {
	for _, c := range cols {
		f, _ := t.Field(c)
		if !f.Nullable && !optional[c] {
			return false
		}
	}
	return true
}

// sourceForeignKey returns the compound columns holding every key of source s, in key order.
// ok is false when the source has no keys, a key is not mapped, or a later source redefined a
// mapped column with another type.
func sourceForeignKey(t *entity.Type, s entity.Source) ([]string, bool) {
	keys := s.Entity.Keys()
	if len(keys) == 0 {
		return nil, false
	}
	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		col := ""
		for _, m := range s.Mappings {
			if m.SourceField == k {
				col = m.Field
				break
			}
		}
		if col == "" {
			return nil, false
		}
		src, _ := s.Entity.Field(k)
		dst, ok := t.Field(col)
		if !ok || baseType(src) != baseType(dst) {
			return nil, false
		}
		cols = append(cols, col)
	}
	return cols, true
}
