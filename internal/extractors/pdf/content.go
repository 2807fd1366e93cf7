package pdf

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// kerningSpace is the TJ adjustment, in thousandths of an em, beyond which
// a gap between two strings is rendered as a word space.
const kerningSpace = -200

// textFromContent decodes the text-showing operators (Tj, TJ, ' and ")
// of a page content stream. Line moves with a vertical offset (Td, TD,
// T*, ') start a new line; ET ends one. Inline images are skipped.
func textFromContent(data []byte) string {
	var (
		out      strings.Builder
		strs     []string
		nums     []float64
		inArray  bool
		lastLine = true
	)

	newline := func() {
		if out.Len() > 0 && !lastLine {
			out.WriteByte('\n')
			lastLine = true
		}
	}
	write := func(s string) {
		if s == "" {
			return
		}
		out.WriteString(s)
		lastLine = false
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '(':
			s, n := readLiteral(data[i:])
			strs = append(strs, decodeText(s))
			i += n
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			s, n := readHex(data[i:])
			strs = append(strs, decodeText(s))
			i += n
		case c == '[':
			inArray = true
			i++
		case c == ']':
			inArray = false
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '/':
			i++
			for i < len(data) && isRegular(data[i]) {
				i++
			}
		case isRegular(c):
			start := i
			for i < len(data) && isRegular(data[i]) {
				i++
			}
			word := string(data[start:i])

			if isNumber(word) {
				v, _ := strconv.ParseFloat(word, 64)
				if inArray && v <= kerningSpace && len(strs) > 0 {
					strs = append(strs, " ")
				}
				nums = append(nums, v)
				continue
			}

			switch word {
			case "Tj", "TJ":
				write(strings.Join(strs, ""))
			case "'", "\"":
				newline()
				write(strings.Join(strs, ""))
			case "Td", "TD":
				if len(nums) >= 2 && nums[len(nums)-1] != 0 {
					newline()
				} else if !lastLine {
					write(" ")
				}
			case "T*", "ET":
				newline()
			case "BI":
				i = skipInlineImage(data, i)
			}
			strs = strs[:0]
			nums = nums[:0]
		default:
			i++
		}
	}

	lines := strings.Split(out.String(), "\n")
	for j, line := range lines {
		lines[j] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// readLiteral reads a parenthesised string starting at data[0] == '('.
// It returns the unescaped bytes and the number of bytes consumed.
func readLiteral(data []byte) ([]byte, int) {
	var (
		out   []byte
		depth = 1
		i     = 1
	)
	for i < len(data) && depth > 0 {
		c := data[i]
		switch c {
		case '\\':
			i++
			if i >= len(data) {
				break
			}
			switch e := data[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r', '\n':
				// Line continuation.
				if e == '\r' && i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; k++ {
						i++
						v = v*8 + int(data[i]-'0')
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth > 0 {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
		i++
	}
	return out, i
}

// readHex reads a hex string starting at data[0] == '<'.
func readHex(data []byte) ([]byte, int) {
	var (
		out  []byte
		hi   = -1
		i    = 1
		done bool
	)
	for ; i < len(data) && !done; i++ {
		c := data[i]
		var v int
		switch {
		case c == '>':
			done = true
			continue
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'a' && c <= 'f':
			v = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = int(c-'A') + 10
		default:
			continue
		}
		if hi < 0 {
			hi = v
		} else {
			out = append(out, byte(hi<<4|v))
			hi = -1
		}
	}
	if hi >= 0 {
		out = append(out, byte(hi<<4))
	}
	return out, i
}

// decodeText interprets string bytes as UTF-16BE when they carry a byte
// order mark, otherwise as Latin-1.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		b = b[2:]
		units := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}

	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			continue
		}
		runes = append(runes, rune(c))
	}
	return string(runes)
}

// skipInlineImage advances past the binary data of an inline image,
// returning the index following the EI operator.
func skipInlineImage(data []byte, i int) int {
	for ; i+1 < len(data); i++ {
		if data[i] == 'E' && data[i+1] == 'I' && isWhite(data[i-1]) && (i+2 >= len(data) || !isRegular(data[i+2])) {
			return i + 2
		}
	}
	return len(data)
}

func isWhite(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isRegular(c byte) bool {
	if isWhite(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

func isNumber(word string) bool {
	c := word[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}
