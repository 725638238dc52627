package domain

import "fmt"

// ConfigurationError reports an invalid kind registration. It indicates a
// packaging defect and is treated as fatal during startup.
type ConfigurationError struct {
	Kind   Kind
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("work order kind %q: %s", e.Kind, e.Reason)
}

// UnknownKindError is returned when a record names a kind that is not registered.
type UnknownKindError struct {
	Kind Kind
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("unknown work order type %q", e.Kind)
}

// CorruptRecordError is returned when a registered kind fails to restore its
// state from a record.
type CorruptRecordError struct {
	Kind    Kind
	Variant string
	Err     error
}

func (e CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt work order state for %q (%s): %v", e.Kind, e.Variant, e.Err)
}

func (e CorruptRecordError) Unwrap() error { return e.Err }

// InvalidOrderError is returned when a work order breaks its variant's field
// constraints.
type InvalidOrderError struct {
	Kind    Kind
	Variant string
	Err     error
}

func (e InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid work order %q (%s): %v", e.Kind, e.Variant, e.Err)
}

func (e InvalidOrderError) Unwrap() error { return e.Err }

// MissingMappingError is raised when encoding a work order whose kind was
// never registered. Only a coding mistake can produce it.
type MissingMappingError struct {
	Kind    Kind
	Variant string
}

func (e MissingMappingError) Error() string {
	return fmt.Sprintf("%s (kind %q) is missing a registry mapping", e.Variant, e.Kind)
}
