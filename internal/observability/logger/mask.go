package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Identity loguea un identificador de usuario o key enmascarado.
func Identity(v string) zap.Field { return zap.String("identity", Mask(v)) }

// Mask deja el primer y último carácter: "alice" -> "a…e". Si parece un
// email enmascara usuario y dominio por separado.
func Mask(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		r := []rune(s)
		if len(r) <= 3 {
			return "***"
		}
		return string(r[0]) + "…" + string(r[len(r)-1])
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts) > 0 && len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}
