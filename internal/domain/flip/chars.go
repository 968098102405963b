package flip

// Ornament prefixes flipped text, framed like the classic style.
const Ornament = "(╯°□°)╯︵"

// flippedChars maps a character to its upside-down glyph.
// B and D have no rotated capital, so they share q and p with the lowercase letters.
var flippedChars = map[string]string{
	" ": " ",
	"a": "ɐ",
	"b": "q",
	"c": "ɔ",
	"d": "p",
	"e": "ǝ",
	"f": "ɟ",
	"g": "ƃ",
	"h": "ɥ",
	"i": "ı",
	"j": "ɾ",
	"k": "ʞ",
	"l": "l",
	"m": "ɯ",
	"n": "u",
	"o": "o",
	"p": "d",
	"q": "b",
	"r": "ɹ",
	"s": "s",
	"t": "ʇ",
	"u": "n",
	"v": "ʌ",
	"w": "ʍ",
	"x": "x",
	"y": "ʎ",
	"z": "z",
	"A": "∀",
	"B": "q",
	"C": "Ɔ",
	"D": "p",
	"E": "Ǝ",
	"F": "Ⅎ",
	"G": "פ",
	"H": "H",
	"I": "I",
	"J": "ſ",
	"K": "ʞ",
	"L": "˥",
	"M": "W",
	"N": "N",
	"O": "O",
	"P": "Ԁ",
	"Q": "Q",
	"R": "ɹ",
	"S": "S",
	"T": "┴",
	"U": "∩",
	"V": "Λ",
	"W": "M",
	"X": "X",
	"Y": "⅄",
	"Z": "Z",
	",": "'",
	"!": "¡",
	"?": "¿",
	"(": ")",
	")": "(",
	"[": "]",
	"]": "[",
	".": "˙",
	`"`: ",,",
	"'": ",",
}

// FlipChar returns the upside-down glyph for a single user-perceived character.
// Characters without a mapping come back unchanged.
func FlipChar(c string) string {
	if flipped, ok := flippedChars[c]; ok {
		return flipped
	}
	return c
}

// HasFlip reports whether c has an explicit mapping.
func HasFlip(c string) bool {
	_, ok := flippedChars[c]
	return ok
}
