// Package jobstamp memoizes the results of idempotent jobs (in-process
// functions or external commands) in persisted stamp records, and skips
// re-running a job while its declared dependency files and expected outputs
// are unchanged since the record was written.
//
// Components:
//   - Codec[V]: (de)serializes the job result V <-> []byte.
//   - Provider: byte store holding stamp records. A directory of files by
//     default (provider/fs); in-process stores (ristretto, bigcache) for
//     long-lived processes.
//   - Method: how dependency freshness is decided (TimeBased or
//     ContentHashBased).
//
// Keys:
//
//	blake3-256( "jobstamp/key/v1" | len(ns) ns | len(name) name | cbor(args) )
//
// rendered as 64 lowercase hex characters. Args are encoded with CBOR core
// deterministic encoding, so map ordering does not affect the key.
//
// Usage:
//
//	s, _ := jobstamp.New[int](jobstamp.Options[int]{Codec: codec.JSON[int]{}})
//	v, err := s.Run(ctx, jobstamp.Func("square", square, 4), jobstamp.RunOptions{
//	    Dependencies: []string{"input.txt"},
//	})
//
// Stamp records are never deleted by the engine. Concurrent writers of the
// same key are not coordinated; the last completed write wins.
package jobstamp
