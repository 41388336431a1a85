package ocr

import "strings"

// Fixed substitution table mapping accented characters to their ASCII base.
// Covers the Vietnamese alphabet plus common Latin accents. Kept as a table
// rather than Unicode decomposition because đ must map to d.
const (
	fromChars = "àáãảạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệđùúủũụưừứửữựòóỏõọôồốổỗộơờớởỡợìíỉĩịäëïîöüûñçýỳỹỵỷ"
	toChars   = "aaaaaaaaaaaaaaaaaeeeeeeeeeeeduuuuuuuuuuuoooooooooooooooooiiiiiaeiiouuncyyyyy"
)

var diacritics = buildTable()

func buildTable() map[rune]rune {
	from := []rune(fromChars)
	to := []rune(toChars)
	m := make(map[rune]rune, len(from))
	for i, r := range from {
		m[r] = to[i]
	}
	return m
}

// Normalize prepares recognized text (or a page title) for keyword matching:
// lowercase, collapse double spaces, flatten newlines, substitute accented
// characters via the fixed table, then drop any remaining non-ASCII rune.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "  ", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if sub, ok := diacritics[r]; ok {
			r = sub
		}
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
