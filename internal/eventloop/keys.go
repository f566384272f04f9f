package eventloop

import (
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

const esc = 0x1b

var csiKeys = map[string]tea.KeyType{
	"A":  tea.KeyUp,
	"B":  tea.KeyDown,
	"C":  tea.KeyRight,
	"D":  tea.KeyLeft,
	"H":  tea.KeyHome,
	"F":  tea.KeyEnd,
	"Z":  tea.KeyShiftTab,
	"1~": tea.KeyHome,
	"2~": tea.KeyInsert,
	"3~": tea.KeyDelete,
	"4~": tea.KeyEnd,
	"5~": tea.KeyPgUp,
	"6~": tea.KeyPgDown,
}

// decodeKey parses the first key press in b. It returns the key, the number
// of bytes consumed and whether the bytes formed a key worth reporting.
// Unknown escape sequences are consumed and reported as !ok. n is zero only
// when b is empty or ends inside a UTF-8 sequence.
func decodeKey(b []byte) (key tea.KeyMsg, n int, ok bool) {
	if len(b) == 0 {
		return tea.KeyMsg{}, 0, false
	}

	switch c := b[0]; {
	case c == esc:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return tea.KeyMsg{Type: tea.KeyEnter}, 1, true
	case c == ' ':
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, 1, true
	case c < 0x20 || c == 0x7f:
		return tea.KeyMsg{Type: tea.KeyType(c)}, 1, true
	}

	if !utf8.FullRune(b) {
		return tea.KeyMsg{}, 0, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return tea.KeyMsg{}, size, false
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, size, true
}

func decodeEscape(b []byte) (tea.KeyMsg, int, bool) {
	if len(b) == 1 {
		return tea.KeyMsg{Type: tea.KeyEsc}, 1, true
	}

	switch b[1] {
	case '[', 'O':
		// CSI or SS3: parameters up to a final byte in 0x40..0x7e.
		for i := 2; i < len(b); i++ {
			if b[i] >= 0x40 && b[i] <= 0x7e {
				if t, ok := csiKeys[string(b[2:i+1])]; ok {
					return tea.KeyMsg{Type: t}, i + 1, true
				}
				return tea.KeyMsg{}, i + 1, false
			}
		}
		return tea.KeyMsg{}, len(b), false
	case esc:
		return tea.KeyMsg{Type: tea.KeyEsc}, 1, true
	}

	// Alt+key arrives as ESC followed by the key.
	key, n, ok := decodeKey(b[1:])
	if n == 0 {
		return tea.KeyMsg{Type: tea.KeyEsc}, 1, true
	}
	key.Alt = true
	return key, n + 1, ok
}

// partialEscape reports whether b could be the start of a longer escape
// sequence: a lone ESC, or a CSI or SS3 sequence missing its final byte.
func partialEscape(b []byte) bool {
	if len(b) == 0 || b[0] != esc {
		return false
	}
	if len(b) == 1 {
		return true
	}
	if b[1] != '[' && b[1] != 'O' {
		return false
	}
	for _, c := range b[2:] {
		if c >= 0x40 && c <= 0x7e {
			return false
		}
	}
	return true
}
