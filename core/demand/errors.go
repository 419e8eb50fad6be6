package demand

import (
	"fmt"

	"github.com/kilianp07/baysim/core/model"
)

// ConfigError reports an unusable demand parameter. It matches
// model.ErrConfiguration with errors.Is.
type ConfigError struct {
	Bucket string // profile key, empty for shared-queue parameters
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Bucket == "" {
		return fmt.Sprintf("demand config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("demand config: %s.%s: %s", e.Bucket, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return model.ErrConfiguration }
