package validate

import "strings"

var (
	doubleQuoteReplacer = strings.NewReplacer(`"`, `\"`)

	// inside a POSIX double-quoted word only these four characters keep a
	// special meaning.
	posixReplacer = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`$`, `\$`,
		"`", "\\`",
	)

	caretReplacer = strings.NewReplacer(
		`^`, `^^`,
		`<`, `^<`,
		`>`, `^>`,
		`\`, `^\`,
		`|`, `^|`,
		`&`, `^&`,
	)
)

// EscapeDoubleQuotes prefixes every double quote in s with a backslash so s
// can be interpolated inside a double-quoted shell token.
func EscapeDoubleQuotes(s string) string {
	return doubleQuoteReplacer.Replace(s)
}

// EscapePosix escapes s for use inside a POSIX double-quoted word, so that the
// shell reads back exactly s without expanding parameters or substitutions.
func EscapePosix(s string) string {
	return posixReplacer.Replace(s)
}

// EscapeCaret escapes the cmd.exe metacharacters of s with a caret, for use in
// batch "set" statements.
func EscapeCaret(s string) string {
	return caretReplacer.Replace(s)
}
