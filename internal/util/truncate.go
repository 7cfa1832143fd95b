package util

// Truncate cuts s to at most max runes and appends marker when it cut.
// max <= 0 means no limit.
func Truncate(s string, max int, marker string) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + marker
		}
		n++
	}
	return s
}
