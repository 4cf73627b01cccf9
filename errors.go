package jobstamp

import (
	"errors"
	"fmt"
)

var (
	ErrNoCodec   = errors.New("jobstamp: codec is required")
	ErrNoJobFunc = errors.New("jobstamp: job function is required")
	ErrNoJobName = errors.New("jobstamp: job name is required")
)

// SerializationError reports that job arguments could not be turned into a
// key, or that a result could not be encoded for storage. In the first case
// the job has not run; in the second it ran but nothing was written.
type SerializationError struct {
	Job string
	Op  string // "key" or "encode"
	Err error
}

func (e *SerializationError) Error() string {
	switch e.Op {
	case "key":
		return fmt.Sprintf("jobstamp: %s: arguments are not serializable: %v", e.Job, e.Err)
	case "encode":
		return fmt.Sprintf("jobstamp: %s: result is not serializable: %v", e.Job, e.Err)
	default:
		return fmt.Sprintf("jobstamp: %s: serialization failed: %v", e.Job, e.Err)
	}
}

func (e *SerializationError) Unwrap() error { return e.Err }

// CorruptRecordError reports stamp bytes that exist but cannot be decoded.
// Run never returns it; the record is treated as missing and the job reruns.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("jobstamp: corrupt stamp record %s: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }
