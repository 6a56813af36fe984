// Package persistederror records failures from the persist path (block or
// block-list upload failures) as small JSON files alongside the rest of a
// metric's storage tree, for operator inspection after the fact.
package persistederror

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// Type is the closed set of failure kinds a PersistedError can record.
type Type string

// TypeFailedToUploadBlockOrBlockList is the only failure kind the persist
// path currently raises.
const TypeFailedToUploadBlockOrBlockList Type = "FailedToUploadBlockOrBlockList"

// PersistedError is the JSON record written for one persist failure.
type PersistedError struct {
	Time       tstime.Nano    `json:"time"`
	Metric     *schema.Metric `json:"metric,omitempty"`
	ErrorType  Type           `json:"error_type"`
	BlockSince *tstime.Sec    `json:"block_since,omitempty"`
	BlockUntil *tstime.Sec    `json:"block_until,omitempty"`
	Detail     *string        `json:"detail,omitempty"`
}

// New constructs a PersistedError stamped with time.
func New(time tstime.Nano, metric schema.Metric, errorType Type, blockSince, blockUntil *tstime.Sec, detail string) PersistedError {
	return PersistedError{
		Time:       time,
		Metric:     &metric,
		ErrorType:  errorType,
		BlockSince: blockSince,
		BlockUntil: blockUntil,
		Detail:     &detail,
	}
}

// Write serializes e as JSON to path, creating the file if it does not
// exist and truncating it if it does.
func Write(path string, e PersistedError) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("persistederror: creating dir: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("persistederror: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persistederror: writing %s: %w", path, err)
	}
	return nil
}

// Read deserializes a PersistedError previously written to path.
func Read(path string) (PersistedError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PersistedError{}, fmt.Errorf("persistederror: reading %s: %w", path, err)
	}
	var e PersistedError
	if err := json.Unmarshal(data, &e); err != nil {
		return PersistedError{}, fmt.Errorf("persistederror: unmarshaling %s: %w", path, err)
	}
	return e, nil
}
