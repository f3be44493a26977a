// Package text measures, wraps and colours tooltip text for the tabletop client.
package text

import "math"

// Budget is the column width, in space units, that tooltip lines wrap at.
const Budget = 75

// defaultCharWidth is used for any character missing from charWidths.
const defaultCharWidth = 10

// charWidths maps characters to their relative rendered width in the
// tabletop client's tooltip font.
var charWidths = map[rune]int{
	'\'': 7,
	'‘': 8, '’': 8, '′': 8,
	'i': 9, 'j': 9, 'I': 9, 'J': 9, ' ': 9,
	'l': 10, ';': 10, ':': 10, ',': 10, '.': 10,
	'!': 11, '|': 11,
	'f': 13, 'r': 13, 't': 13, '[': 13, ']': 13, '{': 13, '}': 13, '"': 13, '″': 13,
	'-': 14, '(': 14, ')': 14,
	'c': 15, 's': 15, 'z': 15, '\\': 15, '“': 15, '”': 15,
	'L': 16, '*': 16, '<': 16, '>': 16, '?': 16,
	'e': 17, 'x': 17,
	'E': 18, 'F': 18, 'S': 18, 'T': 18, '`': 18, '=': 18, '_': 18, '+': 18, '–': 18,
	'a': 19, 'b': 19, 'd': 19, 'g': 19, 'h': 19, 'k': 19, 'o': 19, 'p': 19, 'q': 19, 'v': 19, 'y': 19, 'C': 19, 'P': 19, 'Z': 19, '~': 19, '$': 19, '^': 19,
	'n': 20, 'u': 20, 'B': 20, 'Y': 20, '1': 20, '2': 20, '3': 20, '4': 20, '5': 20, '6': 20, '7': 20, '8': 20, '9': 20, '0': 20,
	'K': 21, 'R': 21, 'V': 21, 'X': 21, '&': 21,
	'A': 22, 'G': 22, '#': 22,
	'D': 23, 'U': 23,
	'H': 24, 'N': 24, 'O': 24, 'Q': 24,
	'—': 25,
	'w': 28,
	'm': 29, 'M': 29,
	'%': 30,
	'W': 31,
	'@': 32,
}

// CharWidth returns the relative width of a single character.
func CharWidth(r rune) int {
	if w, ok := charWidths[r]; ok {
		return w
	}
	return defaultCharWidth
}

// Width estimates how many spaces wide s renders, rounded to the nearest
// whole space.
func Width(s string) int {
	total := 0
	for _, r := range s {
		total += CharWidth(r)
	}
	return int(math.Round(float64(total) / float64(charWidths[' '])))
}
