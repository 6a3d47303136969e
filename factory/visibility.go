package factory

import (
	"fmt"

	"github.com/on-the-ground/apifactory/object"
)

type visibility int

const (
	visPublic visibility = iota
	visPrivate
	visStatic
)

// visibilities tracks the last visibility each member of an instance was
// contributed with.
type visibilities map[string]visibility

// merge applies a contribution to the instance under construction. Every
// member lands on the instance so later plugins can use it.
func (t visibilities) merge(api *object.Object, c Contribution) error {
	for _, name := range c.Private.Names() {
		if _, dup := c.Public[name]; dup {
			return fmt.Errorf("%w: member %q is both public and private", ErrInvalidPluginShape, name)
		}
	}
	for _, name := range c.Static.Names() {
		if _, dup := c.Public[name]; dup {
			return fmt.Errorf("%w: member %q is both public and static", ErrInvalidPluginShape, name)
		}
		if _, dup := c.Private[name]; dup {
			return fmt.Errorf("%w: member %q is both private and static", ErrInvalidPluginShape, name)
		}
	}
	t.set(api, c.Public, visPublic)
	t.set(api, c.Private, visPrivate)
	t.set(api, c.Static, visStatic)
	return nil
}

func (t visibilities) set(api *object.Object, m object.Members, v visibility) {
	for _, name := range m.Names() {
		api.Set(name, m[name])
		t[name] = v
	}
}

// strip removes private members from target when removePrivate is set and
// returns the names removed.
func (t visibilities) strip(target *object.Object, removePrivate bool) []string {
	if !removePrivate {
		return nil
	}
	var removed []string
	for _, name := range target.Names() {
		if t[name] == visPrivate {
			target.Delete(name)
			removed = append(removed, name)
		}
	}
	return removed
}

// tagged returns the names last contributed with visibility v, in
// contribution order.
func (t visibilities) tagged(target *object.Object, v visibility) []string {
	var names []string
	for _, name := range target.Names() {
		if tv, ok := t[name]; ok && tv == v {
			names = append(names, name)
		}
	}
	return names
}
