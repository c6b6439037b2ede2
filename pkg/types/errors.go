// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ConfigurationError reports caller input that a run cannot start with.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
