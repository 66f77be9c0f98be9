package stride

import "errors"

// ErrInvalidConfig is returned by NewController and Config.Validate when a
// tunable is out of range. Construction fails; existing controllers are
// never poisoned by a bad SetConfig.
var ErrInvalidConfig = errors.New("stride: invalid configuration")
