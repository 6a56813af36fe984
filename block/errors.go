package block

import "errors"

var (
	ErrEmptyDatapoints      = errors.New("block: empty datapoints")
	ErrInvalidBlockFile     = errors.New("block: invalid block file")
	ErrUnsupportedField     = errors.New("block: unsupported field type for block encoding")
	ErrFieldTypeMismatched  = errors.New("block: field type mismatched")
	ErrInvalidFieldSelector = errors.New("block: invalid field selector")
)
