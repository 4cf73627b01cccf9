package jobstamp

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The engine calls them on every invocation.
type Hooks interface {
	// A valid record was found and its payload returned; the job did not run.
	Hit(job, key string)

	// The job is about to run. path is the offending file for
	// ReasonDependency/ReasonOutput, empty otherwise.
	Miss(job, key string, reason Reason, path string)

	// Stamp bytes existed but could not be decoded (frame or payload).
	// The record is treated as absent.
	CorruptRecord(key string, err error)

	// The job succeeded but its record could not be written. The fresh
	// result was still returned to the caller.
	SaveFailed(key string, err error)

	// A dependency could not be fingerprinted after the job ran (usually
	// because it does not exist). It is left out of the record.
	FingerprintSkipped(path string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string, string)                  {}
func (NopHooks) Miss(string, string, Reason, string) {}
func (NopHooks) CorruptRecord(string, error)         {}
func (NopHooks) SaveFailed(string, error)            {}
func (NopHooks) FingerprintSkipped(string, error)    {}
