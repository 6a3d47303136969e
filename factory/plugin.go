package factory

import (
	"slices"

	"github.com/on-the-ground/apifactory/object"
)

// Phase names one of the four plugin phases.
type Phase string

const (
	PhaseCore    Phase = "core"
	PhasePrivate Phase = "private"
	PhasePublic  Phase = "public"
	PhaseStatic  Phase = "static"
)

var allPhases = []Phase{PhaseCore, PhasePrivate, PhasePublic, PhaseStatic}

// CorePlugin edits the capability record in place. It may read any slot
// before replacing it.
type CorePlugin[S any, K comparable] func(core *Core[S, K]) error

// StaticPlugin contributes factory-level members. It runs once, in New,
// before any instance exists. Public and static members land on the static
// table; private members are visible to later static plugins only.
type StaticPlugin[S any, K comparable] func(b *StaticBuild[S, K]) (Contribution, error)

// PrivatePlugin contributes instance-private members. They are visible to
// later private plugins and to every public plugin through Build.Private,
// never on the returned instance.
type PrivatePlugin[S any, K comparable] func(b *Build[S, K]) (object.Members, error)

// PublicPlugin contributes members to the instance under construction.
type PublicPlugin[S any, K comparable] func(b *Build[S, K]) (Contribution, error)

// Contribution is what a public plugin returns, split by visibility.
//
// Public members stay on the target. Private members are usable by later
// plugins during the build and stripped afterwards. Static members may only
// come from static plugins: they live on the factory's static table and are
// mirrored onto instances when WithRemoveStatic(false) is set.
type Contribution struct {
	Public  object.Members
	Private object.Members
	Static  object.Members
}

// Public is shorthand for a contribution with public members only.
func Public(m object.Members) Contribution {
	return Contribution{Public: m}
}

// Build is the view a private or public plugin gets of the instance being
// built. API is nil during the private phase.
type Build[S any, K comparable] struct {
	State   S
	Key     K
	Core    *Core[S, K]
	Statics *object.Object
	Private *object.Object
	API     *object.Object
	Factory *Factory[S, K]
}

// StaticBuild is the view a static plugin gets of the factory under
// construction.
type StaticBuild[S any, K comparable] struct {
	Core    *Core[S, K]
	Statics *object.Object
	Factory *Factory[S, K]
}

// Set holds plugins grouped by phase, each list in fold order.
type Set[S any, K comparable] struct {
	Core    []CorePlugin[S, K]
	Private []PrivatePlugin[S, K]
	Public  []PublicPlugin[S, K]
	Static  []StaticPlugin[S, K]
}

// Len returns the total number of plugins across phases.
func (s Set[S, K]) Len() int {
	return len(s.Core) + len(s.Private) + len(s.Public) + len(s.Static)
}

func (s Set[S, K]) clone() Set[S, K] {
	return Set[S, K]{
		Core:    slices.Clone(s.Core),
		Private: slices.Clone(s.Private),
		Public:  slices.Clone(s.Public),
		Static:  slices.Clone(s.Static),
	}
}

// Phases is the loosely typed plugin-set shape: each phase maps to a single
// plugin or a list of plugins of that phase. Omitted phases are empty.
type Phases map[Phase]any
