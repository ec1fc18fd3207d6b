package entity

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carType(t *testing.T) *Type {
	t.Helper()
	b := NewBuilder("Car", KindSimple).Version(1).Key("index").Exclude("model")
	b.Add(Field{Name: "index", TypeName: "str", Type: stringType})
	b.Add(Field{Name: "brand", TypeName: "str", Type: stringType, HasDefault: true, Default: "fiat"})
	b.Add(Field{Name: "model", TypeName: "str", Type: reflect.PointerTo(stringType), Nullable: true})
	typ, err := b.Build()
	require.NoError(t, err)
	return typ
}

func Test_RecordNew(t *testing.T) {
	car := carType(t)

	r, err := car.New(map[string]any{"index": "c1", "model": "punto"})
	require.NoError(t, err)
	brand, _ := r.Get("brand")
	assert.Equal(t, "fiat", brand)
	model, _ := r.Get("model")
	require.NotNil(t, model)
	assert.Equal(t, "punto", *model.(*string))
	assert.Equal(t, []any{"c1"}, r.KeyValues())
	assert.NotContains(t, r.View(), "model")
	assert.Contains(t, r.Map(), "model")

	_, err = car.New(map[string]any{"brand": "x", "model": nil})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = car.New(map[string]any{"index": "c1", "model": nil, "colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = car.New(map[string]any{"index": 1, "model": nil})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	r, err = car.New(map[string]any{"index": "c2", "model": nil})
	require.NoError(t, err)
	model, _ = r.Get("model")
	assert.Nil(t, model)
}

func Test_RecordPositional(t *testing.T) {
	car := carType(t)
	assert.Equal(t, []string{"index", "model", "brand"}, car.Fields())

	r, err := car.NewPositional("c1", nil)
	require.NoError(t, err)
	brand, _ := r.Get("brand")
	assert.Equal(t, "fiat", brand)

	_, err = car.NewPositional("c1")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = car.NewPositional("c1", nil, "a", "b")
	assert.Error(t, err)
}

func Test_RecordEqual(t *testing.T) {
	car := carType(t)
	a, err := car.NewPositional("c1", "punto")
	require.NoError(t, err)
	b, err := car.NewPositional("c1", "punto")
	require.NoError(t, err)
	c, err := car.NewPositional("c2", "punto")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	other := carType(t)
	d, err := other.NewPositional("c1", "punto")
	require.NoError(t, err)
	assert.False(t, a.Equal(d))
}

func Test_RecordJSON(t *testing.T) {
	car := carType(t)
	r, err := car.NewPositional("c1", nil, "lancia")
	require.NoError(t, err)
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":"c1","model":null,"brand":"lancia"}`, string(out))

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	again, err := car.New(back)
	require.NoError(t, err)
	assert.True(t, r.Equal(again))
}

func Test_RecordDefaultsAreNotShared(t *testing.T) {
	b := NewBuilder("E", KindSimple)
	b.Add(Field{Name: "note", Type: reflect.PointerTo(stringType), Nullable: true, HasDefault: true, Default: "n"})
	typ, err := b.Build()
	require.NoError(t, err)

	r1, err := typ.New(nil)
	require.NoError(t, err)
	r2, err := typ.New(nil)
	require.NoError(t, err)
	v1, _ := r1.Get("note")
	*v1.(*string) = "changed"
	v2, _ := r2.Get("note")
	assert.Equal(t, "n", *v2.(*string))
}

func Test_Compose(t *testing.T) {
	car := carType(t)

	pb := NewBuilder("Person", KindSimple)
	pb.Add(Field{Name: "index", Type: stringType})
	pb.Add(Field{Name: "name", Type: stringType})
	person, err := pb.Build()
	require.NoError(t, err)

	carField, _ := car.Field("index")
	brandField, _ := car.Field("brand")
	personIndex, _ := person.Field("index")
	nameField, _ := person.Field("name")

	rb := NewBuilder("Registration", KindCompound)
	rb.Source(Source{Entity: car, Mappings: []FieldMapping{{Field: "car_index", SourceField: "index"}, {Field: "brand", SourceField: "brand"}}})
	rb.Source(Source{Entity: person, Mappings: []FieldMapping{{Field: "person_index", SourceField: "index"}, {Field: "name", SourceField: "name"}}, Optional: true})
	carField.Name = "car_index"
	personIndex.Name = "person_index"
	for _, f := range []Field{carField, brandField, personIndex, nameField} {
		rb.Add(f)
	}
	reg, err := rb.Build()
	require.NoError(t, err)
	assert.Equal(t, KindCompound, reg.Kind())
	assert.Equal(t, []string{"car_index", "person_index", "name", "brand"}, reg.Fields())

	c, err := car.NewPositional("c1", nil)
	require.NoError(t, err)
	p, err := person.NewPositional("p1", "Ann")
	require.NoError(t, err)

	r, err := reg.Compose(map[string]*Record{"Car": c, "Person": p})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"car_index": "c1", "brand": "fiat", "person_index": "p1", "name": "Ann"}, r.Map())

	r, err = reg.Compose(map[string]*Record{"Car": c})
	require.NoError(t, err)
	name, _ := r.Get("name")
	assert.Equal(t, "", name)

	_, err = reg.Compose(map[string]*Record{"Person": p})
	assert.ErrorIs(t, err, ErrMissingSource)

	_, err = reg.Compose(map[string]*Record{"Car": p})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func Test_Describe(t *testing.T) {
	car := carType(t)
	m := Describe(car)
	assert.Equal(t, "Car", m.Name)
	assert.Equal(t, KindSimple, m.Kind)
	assert.Equal(t, car.ID().String(), m.ID)
	assert.Equal(t, []string{"index"}, m.Keys)
	assert.Equal(t, []string{"model"}, m.Excluded)
	require.Len(t, m.Fields, 3)
	assert.Equal(t, "*string", m.Fields[1].GoType)
	assert.True(t, m.Fields[1].Nullable)
	assert.Equal(t, "fiat", m.Fields[2].Default)
}

func Test_RecordBytesDefaultIsolated(t *testing.T) {
	bytesType := reflect.TypeOf([]byte(nil))
	b := NewBuilder("E", KindSimple)
	b.Add(Field{Name: "blob", TypeName: "bytes", Type: bytesType, HasDefault: true, Default: []byte("abc")})
	b.Add(Field{Name: "tags", TypeName: "dict", Type: reflect.TypeOf(map[string]any(nil)), HasDefault: true,
		Default: map[string]any{"k": []any{"v"}}})
	typ, err := b.Build()
	require.NoError(t, err)

	r1, err := typ.New(nil)
	require.NoError(t, err)
	// write through the record itself, the only handle that reaches its memory
	st := reflect.ValueOf(r1.Interface()).Elem()
	st.Field(0).Bytes()[0] = 'X'
	st.Field(1).Interface().(map[string]any)["k"].([]any)[0] = "changed"

	r2, err := typ.New(nil)
	require.NoError(t, err)
	blob, _ := r2.Get("blob")
	assert.Equal(t, []byte("abc"), blob)
	tags, _ := r2.Get("tags")
	assert.Equal(t, map[string]any{"k": []any{"v"}}, tags)

	f, _ := typ.Field("blob")
	assert.Equal(t, []byte("abc"), f.Default)
	f.Default.([]byte)[0] = 'Y'
	f, _ = typ.Field("blob")
	assert.Equal(t, []byte("abc"), f.Default, "descriptors are copies")
	assert.Equal(t, []byte("abc"), Describe(typ).Fields[0].Default)
}

func Test_RecordDoesNotAliasCaller(t *testing.T) {
	car := carType(t)
	model := "punto"
	r, err := car.New(map[string]any{"index": "c1", "model": &model})
	require.NoError(t, err)

	model = "panda"
	got, _ := r.Get("model")
	assert.Equal(t, "punto", *got.(*string))

	*got.(*string) = "tipo"
	again, _ := r.Get("model")
	assert.Equal(t, "punto", *again.(*string))
	assert.Equal(t, "punto", *r.Map()["model"].(*string))
}
