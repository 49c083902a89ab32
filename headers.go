package storage

// clientVersion is reported to the service in the X-Client-Info header.
const clientVersion = "0.7.0"

// defaultHeaders returns the headers attached to every request before
// client-level and per-call headers are merged in. It always returns a
// fresh map; callers may mutate the result freely.
func defaultHeaders() map[string]string {
	return map[string]string{
		"X-Client-Info": "storage-go/" + clientVersion,
		"Content-Type":  "application/json",
	}
}

// mergeHeaders combines header maps left to right, later values winning
// on key collision. Nil maps are skipped.
func mergeHeaders(sets ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			merged[k] = v
		}
	}
	return merged
}
