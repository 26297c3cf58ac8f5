package emitter

import "fmt"

// escapeStringLiteral decodes the five recognized backslash escapes in raw
// (a string literal's source text, without surrounding quotes) and
// re-encodes the decoded bytes the way LLVM textual IR wants them: a
// printable ASCII byte passes through literally, everything else — the
// five recognized escapes and any non-printable byte — becomes a `\HH`
// hex pair. Returns the re-encoded text and the decoded byte length
// (including one trailing NUL).
func escapeStringLiteral(raw string) (encoded string, byteLength int) {
	var out []byte
	length := 0

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			var decoded byte
			switch raw[i+1] {
			case 'n':
				decoded = 0x0A
			case 't':
				decoded = 0x09
			case 'r':
				decoded = 0x0D
			case '\\':
				decoded = 0x5C
			case '"':
				decoded = 0x22
			default:
				// Unrecognized escape: the backslash is a literal byte,
				// the following character is handled on its own next
				// iteration.
				out = append(out, encodeIRByte('\\')...)
				length++
				continue
			}
			out = append(out, encodeIRByte(decoded)...)
			length++
			i++
			continue
		}
		out = append(out, encodeIRByte(c)...)
		length++
	}

	length++ // trailing NUL
	return string(out), length
}

// encodeIRByte renders a single decoded byte as LLVM textual IR wants it:
// printable ASCII (other than the quote/backslash that delimit the
// literal) passes through verbatim; everything else is a `\HH` hex pair.
func encodeIRByte(b byte) []byte {
	if b >= 0x20 && b < 0x7F && b != '"' && b != '\\' {
		return []byte{b}
	}
	return []byte(fmt.Sprintf(`\%02X`, b))
}
