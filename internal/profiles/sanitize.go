package profiles

import (
	"strings"
)

// DescriptionDateLayout formats the import date in suggested descriptions.
const DescriptionDateLayout = "2006-01-02 15:04"

// SanitizeName turns a display name into a profile id: characters outside
// [A-Za-z0-9 _.()-] are dropped, spaces become underscores and the result is
// lower-cased.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.', r == '(', r == ')':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.ToLower(b.String())
}

// TrimExtension strips the last extension from a file name. Names without a
// dot are returned unchanged.
func TrimExtension(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		return fileName[:i]
	}
	return fileName
}
