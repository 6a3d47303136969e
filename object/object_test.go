package object_test

import (
	"testing"

	"github.com/on-the-ground/apifactory/object"
	"github.com/on-the-ground/apifactory/shared/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetKeepsInsertionOrder(t *testing.T) {
	o := object.New()
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, o.Names())
	assert.Equal(t, 2, o.Len())
	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, "[b a]", o.String())
}

func TestObject_MergeSortsNewNames(t *testing.T) {
	o := object.FromMembers(object.Members{"y": 2, "x": 1})
	o.Merge(object.Members{"add": "f", "x": 10})

	assert.Equal(t, []string{"x", "y", "add"}, o.Names())
	assert.Equal(t, 10, object.MustGet[int](o, "x"))
}

func TestObject_Delete(t *testing.T) {
	o := object.FromMembers(object.Members{"a": 1, "b": 2, "c": 3})

	assert.True(t, o.Delete("b"))
	assert.False(t, o.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, o.Names())
	assert.False(t, o.Has("b"))
}

func TestObject_Members_IsSnapshot(t *testing.T) {
	o := object.FromMembers(object.Members{"a": 1})
	m := o.Members()
	m["b"] = 2

	assert.False(t, o.Has("b"))
	assert.Equal(t, object.Members{"a": 1}, o.Members())
}

func TestObject_Properties(t *testing.T) {
	value := 1
	o := object.New()
	o.Set("count", object.Property{
		Get: func() any { return value },
		Set: func(v any) error {
			n, ok := v.(int)
			if !ok {
				return helper.ErrUnexpectedType
			}
			value = n
			return nil
		},
	})
	o.Set("fixed", object.Property{Get: func() any { return "x" }})

	n, err := object.Get[int](o, "count")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, o.Assign("count", 5))
	assert.Equal(t, 5, value)
	assert.ErrorIs(t, o.Assign("count", "five"), helper.ErrUnexpectedType)

	assert.ErrorIs(t, o.Assign("fixed", "y"), object.ErrReadOnly)

	require.NoError(t, o.Assign("plain", 7))
	assert.Equal(t, 7, object.MustGet[int](o, "plain"))

	_, isProp := object.Lookup[object.Property](o, "count")
	assert.True(t, isProp)
}

func TestGet_Errors(t *testing.T) {
	o := object.FromMembers(object.Members{"n": 1})

	_, err := object.Get[int](o, "missing")
	assert.ErrorIs(t, err, object.ErrNoSuchMember)

	_, err = object.Get[string](o, "n")
	assert.ErrorIs(t, err, helper.ErrUnexpectedType)

	_, ok := object.Lookup[string](o, "n")
	assert.False(t, ok)

	assert.Panics(t, func() { object.MustGet[string](o, "n") })
}

func TestNilObject(t *testing.T) {
	var o *object.Object
	assert.Zero(t, o.Len())
	assert.False(t, o.Has("x"))
	assert.Nil(t, o.Names())
	assert.Empty(t, o.Members())
	_, err := object.Get[int](o, "x")
	assert.ErrorIs(t, err, object.ErrNoSuchMember)
}
