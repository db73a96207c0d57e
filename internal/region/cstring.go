package region

import "bytes"

// EncodeCString returns s followed by zero padding up to n bytes.
// Callers must ensure len(s) < n.
func EncodeCString(s string, n int) []byte {
	buf := make([]byte, n)
	copy(buf, s)

	return buf
}

// DecodeCString returns the bytes before the first NUL.
// ok is false when b holds no terminator.
func DecodeCString(b []byte) (s string, ok bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", false
	}

	return string(b[:i]), true
}
