package entity

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	int64Type  = reflect.TypeOf(int64(0))
	stringType = reflect.TypeOf("")
)

func Test_BuilderOrdering(t *testing.T) {
	cases := []struct {
		name   string
		fields []Field
		want   []string
	}{
		{
			name: "no defaults keeps declaration order",
			fields: []Field{
				{Name: "b", Type: int64Type},
				{Name: "a", Type: int64Type},
			},
			want: []string{"b", "a"},
		},
		{
			name: "defaulted fields move after the rest",
			fields: []Field{
				{Name: "index", Type: int64Type, HasDefault: true, Default: int64(0)},
				{Name: "brand", Type: stringType},
				{Name: "model", Type: stringType, HasDefault: true, Default: "x"},
				{Name: "year", Type: int64Type},
			},
			want: []string{"brand", "year", "index", "model"},
		},
		{
			name: "redefinition keeps first position",
			fields: []Field{
				{Name: "a", Type: int64Type},
				{Name: "b", Type: int64Type},
				{Name: "a", Type: stringType},
			},
			want: []string{"a", "b"},
		},
		{
			name: "redefinition with a default changes group",
			fields: []Field{
				{Name: "a", Type: int64Type},
				{Name: "b", Type: int64Type},
				{Name: "a", Type: int64Type, HasDefault: true, Default: int64(1)},
			},
			want: []string{"b", "a"},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder("E", KindSimple)
			for _, f := range tt.fields {
				b.Add(f)
			}
			typ, err := b.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ.Fields())

			st := typ.GoType()
			require.Equal(t, reflect.Struct, st.Kind())
			require.Equal(t, len(tt.want), st.NumField())
			for i, name := range tt.want {
				assert.Equal(t, name, st.Field(i).Tag.Get("json"))
				assert.Equal(t, name, st.Field(i).Tag.Get("yaml"))
			}
		})
	}
}

func Test_BuilderLastWriteWins(t *testing.T) {
	b := NewBuilder("E", KindSimple)
	assert.False(t, b.Add(Field{Name: "a", Type: int64Type}))
	assert.True(t, b.Add(Field{Name: "a", Type: stringType}))
	typ, err := b.Build()
	require.NoError(t, err)
	f, ok := typ.Field("a")
	require.True(t, ok)
	assert.Equal(t, stringType, f.Type)
}

func Test_BuilderErrors(t *testing.T) {
	t.Run("go name collision", func(t *testing.T) {
		b := NewBuilder("E", KindSimple)
		b.Add(Field{Name: "car_index", Type: int64Type})
		b.Add(Field{Name: "CarIndex", Type: int64Type})
		_, err := b.Build()
		assert.ErrorIs(t, err, ErrFieldNameCollision)
	})
	t.Run("unknown key", func(t *testing.T) {
		b := NewBuilder("E", KindSimple).Key("missing")
		b.Add(Field{Name: "a", Type: int64Type})
		_, err := b.Build()
		assert.Error(t, err)
	})
	t.Run("unknown excluded", func(t *testing.T) {
		b := NewBuilder("E", KindSimple).Exclude("missing")
		b.Add(Field{Name: "a", Type: int64Type})
		_, err := b.Build()
		assert.Error(t, err)
	})
	t.Run("empty name", func(t *testing.T) {
		_, err := NewBuilder(" ", KindSimple).Build()
		assert.Error(t, err)
	})
	t.Run("untyped field", func(t *testing.T) {
		b := NewBuilder("E", KindSimple)
		b.Add(Field{Name: "a"})
		_, err := b.Build()
		assert.Error(t, err)
	})
}

func Test_BuilderIdentity(t *testing.T) {
	build := func() *Type {
		b := NewBuilder("Car", KindSimple).Version(2).Key("index")
		b.Add(Field{Name: "index", Type: int64Type})
		typ, err := b.Build()
		require.NoError(t, err)
		return typ
	}
	a, b := build(), build()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.Fields(), b.Fields())
	assert.Equal(t, a.GoType(), b.GoType())
	assert.Equal(t, 2, a.Version())
	assert.Equal(t, KindSimple, a.Kind())
	assert.Equal(t, []string{"index"}, a.Keys())
}

func Test_goFieldName(t *testing.T) {
	cases := map[string]string{
		"car_index": "CarIndex",
		"brand":     "Brand",
		"Name":      "Name",
		"1st":       "F1St",
		"_hidden":   "Hidden",
		"":          "F",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, goFieldName(in))
		})
	}
}

func Test_ViewFields(t *testing.T) {
	b := NewBuilder("Car", KindSimple).Exclude("secret")
	b.Add(Field{Name: "index", Type: int64Type})
	b.Add(Field{Name: "secret", Type: stringType})
	typ, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"index", "secret"}, typ.Fields())
	assert.Equal(t, []string{"index"}, typ.ViewFields())
	assert.True(t, typ.IsExcluded("secret"))

	keys := typ.ExcludedFields()
	keys[0] = "changed"
	assert.Equal(t, []string{"secret"}, typ.ExcludedFields())
}
