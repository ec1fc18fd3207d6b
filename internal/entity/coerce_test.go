package entity

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Coerce(t *testing.T) {
	ptrInt := reflect.PointerTo(int64Type)
	cases := []struct {
		name    string
		in      any
		typ     reflect.Type
		want    any
		wantErr bool
	}{
		{name: "int from int", in: 5, typ: int64Type, want: int64(5)},
		{name: "int from integral float", in: 5.0, typ: int64Type, want: int64(5)},
		{name: "int from fractional float", in: 5.5, typ: int64Type, wantErr: true},
		{name: "int from numeric string", in: "42", typ: int64Type, want: int64(42)},
		{name: "int from bool", in: true, typ: int64Type, wantErr: true},
		{name: "int8 overflow", in: 300, typ: reflect.TypeOf(int8(0)), wantErr: true},
		{name: "uint negative", in: -1, typ: reflect.TypeOf(uint16(0)), wantErr: true},
		{name: "float from int", in: 3, typ: reflect.TypeOf(float64(0)), want: float64(3)},
		{name: "float32 overflow", in: 1e300, typ: reflect.TypeOf(float32(0)), wantErr: true},
		{name: "string from string", in: "x", typ: stringType, want: "x"},
		{name: "string from number", in: 1, typ: stringType, wantErr: true},
		{name: "bool from string", in: "yes", typ: reflect.TypeOf(false), want: true},
		{name: "bool from garbage", in: "maybe", typ: reflect.TypeOf(false), wantErr: true},
		{name: "bytes from string", in: "ab", typ: reflect.TypeOf([]byte(nil)), want: []byte("ab")},
		{name: "complex from float", in: 1.5, typ: reflect.TypeOf(complex128(0)), want: complex(1.5, 0)},
		{name: "duration from string", in: "1m", typ: reflect.TypeOf(time.Duration(0)), want: time.Minute},
		{name: "time from RFC3339", in: "2024-01-02T03:04:05Z", typ: reflect.TypeOf(time.Time{}), want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "list from strings", in: []string{"a", "b"}, typ: reflect.TypeOf([]any(nil)), want: []any{"a", "b"}},
		{name: "any holds anything", in: 7, typ: reflect.TypeOf((*any)(nil)).Elem(), want: 7},
		{name: "nil into non-nullable", in: nil, typ: int64Type, wantErr: true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in, tt.typ)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}

	t.Run("nullable accepts nil", func(t *testing.T) {
		got, err := Coerce(nil, ptrInt)
		require.NoError(t, err)
		assert.True(t, got.IsNil())
	})
	t.Run("nullable wraps value", func(t *testing.T) {
		got, err := Coerce(3, ptrInt)
		require.NoError(t, err)
		require.False(t, got.IsNil())
		assert.Equal(t, int64(3), got.Elem().Interface())
	})
}
