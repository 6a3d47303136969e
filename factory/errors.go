package factory

import "fmt"

var (
	// ErrInvalidPluginShape is returned when a plugin argument is not a
	// plugin, a plugin list, a Set or a Phases map, or when a contribution
	// tags one member with two visibilities.
	ErrInvalidPluginShape = fmt.Errorf("invalid plugin shape")

	// ErrInvalidOptionType is returned when an option or setting has the
	// wrong kind for the factory's state and key types.
	ErrInvalidOptionType = fmt.Errorf("invalid option type")

	// ErrInvalidState is returned by Create when the arguments do not
	// describe a valid state. Nothing is cached when it is returned.
	ErrInvalidState = fmt.Errorf("invalid state")
)
