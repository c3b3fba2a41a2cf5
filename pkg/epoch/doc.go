// Package epoch rewrites Unix epoch timestamps embedded in byte streams.
//
// # Recognized timestamps
//
// A timestamp is a run of ASCII digits ('0'-'9') of exactly one of two widths:
//
//   - 10 digits: seconds since 1970-01-01T00:00:00Z
//   - 13 digits: milliseconds since 1970-01-01T00:00:00Z
//
// Runs of any other width are ordinary text and are copied unchanged. There is no sign,
// no separator and no other unit.
//
// # Output format
//
// Each recognized run is replaced by a bracketed UTC date-time:
//
//	1530216070     -> [2018-06-28 20:01:10 UTC]
//	1530216070317  -> [2018-06-28 20:01:10.317 UTC]
//
// All other bytes, including invalid UTF-8 and null bytes, are copied unchanged.
//
// # Chunked input
//
// Replace processes one chunk at a time. A digit run at the end of a chunk may continue
// in the next one, so unless the caller says the chunk is the last one, the trailing run
// is held back: it is not part of Result.Data and its length is reported as
// Result.Leftover. The caller prepends those bytes to the next chunk.
//
//	res := epoch.Replace([]byte("ts=15302160"), false)
//	// res.Data == "ts=", res.Leftover == 8
//	res = epoch.Replace([]byte("15302160"+"70317 ok"), false)
//	// res.Data == "[2018-06-28 20:01:10.317 UTC] ok", res.Leftover == 0
//
// Writer implements this carry for io.Writer based pipelines.
package epoch
