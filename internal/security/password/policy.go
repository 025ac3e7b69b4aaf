package password

import (
	"errors"
	"strings"
	"unicode"
)

// ErrPolicy envuelve las razones de rechazo de Policy.Check.
var ErrPolicy = errors.New("password: policy violation")

type Policy struct {
	MinLength     int  `yaml:"min_length"`
	MaxLength     int  `yaml:"max_length"`
	RequireUpper  bool `yaml:"require_upper"`
	RequireLower  bool `yaml:"require_lower"`
	RequireDigit  bool `yaml:"require_digit"`
	RequireSymbol bool `yaml:"require_symbol"`
}

// Reasons lista las reglas que s no cumple (too_short, missing_upper...).
func (p Policy) Reasons(s string) []string {
	var reasons []string
	n := len([]rune(s))
	if n < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		reasons = append(reasons, "too_long")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	return reasons
}

// Check retorna nil o ErrPolicy con las razones separadas por coma.
func (p Policy) Check(s string) error {
	if r := p.Reasons(s); len(r) > 0 {
		return &PolicyError{Reasons: r}
	}
	return nil
}

type PolicyError struct{ Reasons []string }

func (e *PolicyError) Error() string {
	return "password: policy violation: " + strings.Join(e.Reasons, ",")
}

func (e *PolicyError) Unwrap() error { return ErrPolicy }
