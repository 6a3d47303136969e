package keys_test

import (
	"fmt"
	"testing"

	"github.com/on-the-ground/apifactory/keys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ X, Y int }

type tags []string

type boxed struct{ V any }

func (t tags) String() string { return fmt.Sprintf("tags%v", []string(t)) }

func TestIdentity(t *testing.T) {
	k, err := keys.Identity[string, string]("a")
	require.NoError(t, err)
	assert.Equal(t, "a", k)

	pk, err := keys.Identity[point, point](point{1, 2})
	require.NoError(t, err)
	assert.Equal(t, point{1, 2}, pk)

	ak, err := keys.Identity[any, any](nil)
	require.NoError(t, err)
	assert.Nil(t, ak)
}

func TestIdentity_RejectsUnkeyableStates(t *testing.T) {
	_, err := keys.Identity[any, any]([]int{1, 2})
	assert.ErrorIs(t, err, keys.ErrUnkeyable)

	_, err = keys.Identity[any, string](42)
	assert.ErrorIs(t, err, keys.ErrUnkeyable)

	_, err = keys.Identity[*point, string](nil)
	assert.ErrorIs(t, err, keys.ErrUnkeyable)

	_, err = keys.Identity[any, any](boxed{V: []int{1}})
	assert.ErrorIs(t, err, keys.ErrUnkeyable)

	_, err = keys.Identity[any, any]([1]any{map[string]int{}})
	assert.ErrorIs(t, err, keys.ErrUnkeyable)
}

func TestComparable(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"int", 1, true},
		{"struct", point{1, 2}, true},
		{"slice", []int{1}, false},
		{"empty box", boxed{}, true},
		{"boxed int", boxed{V: 3}, true},
		{"boxed slice", boxed{V: []int{1}}, false},
		{"box in box", boxed{V: boxed{V: map[string]int{}}}, false},
		{"array of any", [2]any{1, "a"}, true},
		{"array holding a func", [1]any{func() {}}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, keys.Comparable(tc.v))
		})
	}
}

func TestOf(t *testing.T) {
	v, err := keys.Of(tags{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "tags[a b]", v)

	v, err = keys.Of(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = keys.Of([]int{1})
	assert.ErrorIs(t, err, keys.ErrUnkeyable)

	_, err = keys.Of(boxed{V: []int{1}})
	assert.ErrorIs(t, err, keys.ErrUnkeyable)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "5,2", keys.Join(5, 2))
	assert.Equal(t, "5,2", keys.Join([]int{5, 2}))
	assert.Equal(t, "5,2", keys.Join([2]float64{5, 2}))
	assert.Equal(t, "x", keys.Join("x"))
	assert.Equal(t, "", keys.Join())
}

func TestHash(t *testing.T) {
	assert.Equal(t, keys.Hash(5, 2), keys.Hash([]int{5, 2}))
	assert.NotEqual(t, keys.Hash(5, 2), keys.Hash(2, 5))
	assert.Equal(t, keys.HashString("5,2"), keys.Hash(5, 2))
}
