// Package strclass classifies string content for the string table: the
// array-index test and the decoded character length.
package strclass

// NoArrayIndex is the sentinel returned for content that is not an array index.
const NoArrayIndex = uint32(0xffffffff)

// MaxArrayIndex is the largest valid array index (2^32 - 2).
const MaxArrayIndex = NoArrayIndex - 1

// maxIndexDigits is the digit count of the largest uint32.
const maxIndexDigits = 10

const decimalBase = 10

// ArrayIndex reports whether data is the canonical decimal form of a valid
// array index and returns its value. Leading zeros are rejected except for
// "0" itself; empty input and values above [MaxArrayIndex] are rejected.
func ArrayIndex(data []byte) (uint32, bool) {
	if len(data) == 0 || len(data) > maxIndexDigits {
		return NoArrayIndex, false
	}

	if data[0] == '0' && len(data) > 1 {
		return NoArrayIndex, false
	}

	var val uint64

	for _, c := range data {
		if c < '0' || c > '9' {
			return NoArrayIndex, false
		}

		val = val*decimalBase + uint64(c-'0')
	}

	if val > uint64(MaxArrayIndex) {
		return NoArrayIndex, false
	}

	return uint32(val), true
}

// CharLen returns the number of code points in data, assuming it is
// (possibly extended) UTF-8. Input is not validated: every byte that is not
// a continuation byte starts a character, so the result never exceeds len(data).
func CharLen(data []byte) int {
	n := 0

	for _, c := range data {
		if c&0xc0 != 0x80 {
			n++
		}
	}

	return n
}
