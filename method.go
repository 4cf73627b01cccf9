package jobstamp

import (
	"fmt"

	"github.com/unkn0wn-root/jobstamp/internal/fingerprint"
)

// Method decides whether a recorded dependency is still fresh.
type Method uint8

const (
	// TimeBased treats a dependency as changed when its modification time
	// is newer than the one recorded.
	TimeBased Method = iota
	// ContentHashBased treats a dependency as changed when its content
	// digest differs from the one recorded. Slower, but survives copies
	// and touches that leave the bytes intact.
	ContentHashBased
)

func (m Method) String() string {
	switch m {
	case TimeBased:
		return "time"
	case ContentHashBased:
		return "hash"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

func (m Method) valid() bool { return m == TimeBased || m == ContentHashBased }

// Reason explains a Verdict.
type Reason uint8

const (
	ReasonNone       Reason = iota // fresh
	ReasonNoRecord                 // no usable record for the key
	ReasonDependency               // a dependency is missing or changed
	ReasonOutput                   // an expected output is missing
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoRecord:
		return "no_record"
	case ReasonDependency:
		return "dependency"
	case ReasonOutput:
		return "output"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Verdict is the outcome of a staleness check. Path names the first
// offending dependency or output.
type Verdict struct {
	Stale  bool
	Reason Reason
	Path   string
}

func fresh() Verdict { return Verdict{Reason: ReasonNone} }

func staleBy(r Reason, path string) Verdict {
	return Verdict{Stale: true, Reason: r, Path: path}
}

// Check compares rec against the current state of the filesystem.
// Dependencies are examined before outputs, each in declared order; the
// first failure decides. Filesystem errors count as staleness of the path
// concerned and are not reported.
func (m Method) Check(rec *Record, deps, outputs []string) Verdict {
	if rec == nil {
		return staleBy(ReasonNoRecord, "")
	}
	for _, d := range deps {
		if !m.depFresh(rec, d) {
			return staleBy(ReasonDependency, d)
		}
	}
	for _, o := range outputs {
		if !fingerprint.Exists(o) {
			return staleBy(ReasonOutput, o)
		}
	}
	return fresh()
}

func (m Method) depFresh(rec *Record, path string) bool {
	fp, ok := rec.fingerprint(path)
	if !ok {
		return false
	}
	switch m {
	case ContentHashBased:
		d, err := fingerprint.Digest(path)
		if err != nil {
			return false
		}
		return fingerprint.SameDigest(fp.Digest, d)
	default:
		mt, err := fingerprint.ModTime(path)
		if err != nil {
			return false
		}
		return mt <= fp.ModTime
	}
}
