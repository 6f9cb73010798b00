package resource

import "errors"

var ErrInvalidContext = errors.New("invalid competition context")
var ErrUnknownKind = errors.New("unknown resource kind")
var ErrUnitRequired = errors.New("unit is required for unit-scoped resource")
var ErrUnitNotAllowed = errors.New("unit is not allowed for this resource")
