package resolver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type float16 float32

func Test_Resolve(t *testing.T) {
	r := New(map[string]reflect.Type{
		"numpy.float16": reflect.TypeOf(float16(0)),
		"int":           reflect.TypeOf(""),
	})
	cases := []struct {
		name string
		want reflect.Type
	}{
		{name: "int", want: reflect.TypeOf(int64(0))},
		{name: "str", want: reflect.TypeOf("")},
		{name: "float", want: reflect.TypeOf(float64(0))},
		{name: "bool", want: reflect.TypeOf(false)},
		{name: "bytes", want: reflect.TypeOf([]byte(nil))},
		{name: "dict", want: reflect.TypeOf(map[string]any(nil))},
		{name: "numpy.float16", want: reflect.TypeOf(float16(0))},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ResolveUnknown(t *testing.T) {
	_, err := New(nil).Resolve("next")
	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "next", ute.Name)

	_, err = New(nil).Resolve("numpy.float16")
	assert.Error(t, err)
}

func Test_NewCopiesTable(t *testing.T) {
	ext := map[string]reflect.Type{"x": reflect.TypeOf(int8(0))}
	r := New(ext)
	delete(ext, "x")
	_, err := r.Resolve("x")
	assert.NoError(t, err)
	assert.Contains(t, r.Names(), "x")
	assert.Contains(t, r.Names(), "object")
}

func Test_KindOf(t *testing.T) {
	typ, err := KindOf("float32")
	require.NoError(t, err)
	assert.Equal(t, reflect.Float32, typ.Kind())

	_, err = KindOf("float128")
	assert.Error(t, err)
}
