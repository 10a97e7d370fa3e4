package types

import "errors"

// Sentinel errors for searchcond operations.
// The inference engine and adapter never return errors; these belong to the
// service shell (rule documents, store, transport).
var (
	// ErrUnsupportedFormat indicates a rule document format other than JSON or YAML.
	ErrUnsupportedFormat = errors.New("unsupported rule document format")

	// ErrRuleSetNotFound indicates no stored rule set matches the name or ID.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrEmptyRuleSetName indicates a store operation without a rule set name.
	ErrEmptyRuleSetName = errors.New("rule set name is empty")

	// ErrInvalidRequest indicates an inference request that cannot be decoded.
	ErrInvalidRequest = errors.New("invalid inference request")
)
