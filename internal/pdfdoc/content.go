package pdfdoc

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// decodeContentStream scrapes text-showing operators (Tj, TJ, ') out of a
// raw page content stream and joins their string operands. Positioning
// operators (Td, TD, T*) become whitespace so words and lines stay apart.
// This trusts whatever the stream encodes; no layout reconstruction.
func decodeContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeOperands(&sb, line, "")
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			writeOperands(&sb, line, "\n")
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normaliseText(sb.String())
}

// writeOperands decodes every parenthesised string literal on the line and
// appends it to sb, each preceded by prefix.
func writeOperands(sb *strings.Builder, line []byte, prefix string) {
	for _, lit := range stringLiterals(line) {
		text := decodeLiteral(lit)
		if text == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(text)
	}
}

// stringLiterals returns the raw contents of every (...) literal on the
// line, honouring backslash escapes so embedded parentheses don't end a
// literal early.
func stringLiterals(line []byte) [][]byte {
	var literals [][]byte
	start := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++ // skip the escaped byte
		case '(':
			if start < 0 {
				start = i + 1
			}
		case ')':
			if start >= 0 {
				literals = append(literals, line[start:i])
				start = -1
			}
		}
	}
	return literals
}

// decodeLiteral resolves PDF string escape sequences, including up to
// three-digit octal codes.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// normaliseText collapses runs of whitespace to a single space, drops
// control and other non-printable runes, and applies NFC so combining
// sequences compare equal across producers.
func normaliseText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return norm.NFC.String(strings.TrimSpace(sb.String()))
}
