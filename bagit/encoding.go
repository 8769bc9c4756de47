package bagit

import "strings"

const (
	crEncoded      = "%0D"
	lfEncoded      = "%0A"
	percentEncoded = "%25"
)

// PercentEncode replaces every CR with %0D, LF with %0A, and % with %25.
// It returns the input unchanged when none of the three occur. No other
// character is touched; this is not a general URL encoder.
func PercentEncode(value string) string {
	if !strings.ContainsAny(value, "\r\n%") {
		return value
	}
	var encoded strings.Builder
	encoded.Grow(len(value) + 2)
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\r':
			encoded.WriteString(crEncoded)
		case '\n':
			encoded.WriteString(lfEncoded)
		case '%':
			encoded.WriteString(percentEncoded)
		default:
			encoded.WriteByte(value[i])
		}
	}
	return encoded.String()
}

// PercentDecode is the inverse of PercentEncode over the same three
// escape sequences. A % that does not begin one of the recognized pairs
// passes through untouched; policing such input is the manifest reader's
// concern, not the codec's.
func PercentDecode(value string) string {
	if !strings.Contains(value, "%") {
		return value
	}
	var decoded strings.Builder
	decoded.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] == '%' && i+2 < len(value) {
			switch strings.ToUpper(value[i+1 : i+3]) {
			case "0D":
				decoded.WriteByte('\r')
				i += 2
				continue
			case "0A":
				decoded.WriteByte('\n')
				i += 2
				continue
			case "25":
				decoded.WriteByte('%')
				i += 2
				continue
			}
		}
		decoded.WriteByte(value[i])
	}
	return decoded.String()
}

// hasUnrecognizedEscape reports whether value contains a % that does not
// begin one of the three recognized escape pairs.
func hasUnrecognizedEscape(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] != '%' {
			continue
		}
		if i+2 >= len(value) {
			return true
		}
		switch strings.ToUpper(value[i+1 : i+3]) {
		case "0D", "0A", "25":
			i += 2
		default:
			return true
		}
	}
	return false
}
