package config

// Section is one named group of settings. Sections own their defaults,
// validation and conversion to and from the generic map persisted by a Store.
type Section interface {
	// ID is the key the section is stored under
	ID() string

	// Title is a human readable name
	Title() string

	// Description explains what the section controls
	Description() string

	// Data returns the current settings as a generic map
	Data() map[string]interface{}

	// SetData applies settings from a generic map. Unknown keys are ignored.
	SetData(data map[string]interface{}) error

	// Validate reports whether the current settings are usable
	Validate() error

	// Reset restores the defaults
	Reset()
}
