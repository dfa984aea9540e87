package runtimeconfig

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that decodes from strings such as "90s".
type Duration time.Duration

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("publish config: invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}
