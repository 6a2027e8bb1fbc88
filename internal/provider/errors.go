package provider

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// ErrUnknownSource is matched by every UnknownSourceError.
var ErrUnknownSource = errors.New("unknown image source")

// UnknownSourceError reports a source key that was never registered. It
// signals a configuration or programming mistake.
type UnknownSourceError struct {
	Source models.ImageSource
}

func (e *UnknownSourceError) Error() string {
	if e.Source == "" {
		return "no default image source configured"
	}
	return fmt.Sprintf("unknown image source %q", e.Source)
}

// Is lets errors.Is(err, ErrUnknownSource) match.
func (e *UnknownSourceError) Is(target error) bool {
	return target == ErrUnknownSource
}
