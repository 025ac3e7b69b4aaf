// Package password deriva y verifica hashes argon2id en formato PHC.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMismatch: el secreto no corresponde al hash.
	ErrMismatch = errors.New("password: mismatch")
	// ErrFormat: el hash almacenado no es un PHC argon2id válido.
	ErrFormat = errors.New("password: malformed hash")
	// ErrEmpty: no se hashean secretos vacíos.
	ErrEmpty = errors.New("password: empty secret")
)

const (
	saltLen = 16
	version = argon2.Version

	// techos para no ejecutar parámetros absurdos leídos de un hash corrupto
	maxMemory = 1 << 21 // 2 GiB en KiB
	maxTime   = 64
	maxKeyLen = 128
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

func (p Params) Validate() error {
	switch {
	case p.Memory == 0 || p.Memory > maxMemory:
		return fmt.Errorf("password: memory %d out of range", p.Memory)
	case p.Time == 0 || p.Time > maxTime:
		return fmt.Errorf("password: time %d out of range", p.Time)
	case p.Parallelism == 0:
		return errors.New("password: parallelism must be > 0")
	case p.KeyLen < 16 || p.KeyLen > maxKeyLen:
		return fmt.Errorf("password: key length %d out of range", p.KeyLen)
	}
	return nil
}

// Hash devuelve $argon2id$v=19$m=..,t=..,p=..$<salt>$<dk> con salt nuevo.
func Hash(p Params, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmpty
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: salt: %w", err)
	}
	dk := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return encode(p, salt, dk), nil
}

func encode(p Params, salt, dk []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	)
}

// Verify recalcula el digest con los parámetros del propio hash.
// nil si coincide, ErrMismatch si no, ErrFormat si el hash no se puede leer.
func Verify(secret, phc string) error {
	p, salt, want, err := decode(phc)
	if err != nil {
		return err
	}
	got := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

// decode parte "$argon2id$v=19$m=65536,t=3,p=1$salt$dk".
func decode(phc string) (Params, []byte, []byte, error) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrFormat
	}
	if parts[2] != "v="+strconv.Itoa(version) {
		return Params{}, nil, nil, fmt.Errorf("%w: version %q", ErrFormat, parts[2])
	}

	var p Params
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return Params{}, nil, nil, ErrFormat
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Params{}, nil, nil, fmt.Errorf("%w: %s", ErrFormat, kv)
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return Params{}, nil, nil, fmt.Errorf("%w: %s", ErrFormat, kv)
			}
			p.Parallelism = uint8(n)
		default:
			return Params{}, nil, nil, fmt.Errorf("%w: unknown param %q", ErrFormat, k)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: salt", ErrFormat)
	}
	dk, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: digest", ErrFormat)
	}
	p.KeyLen = uint32(len(dk))
	if err := p.Validate(); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return p, salt, dk, nil
}

// Hasher fija los parámetros usados para hashear secretos nuevos.
type Hasher struct {
	Params Params

	dummyOnce sync.Once
	dummy     string
}

func NewHasher(p Params) (*Hasher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{Params: p}, nil
}

func (h *Hasher) Hash(secret string) (string, error) { return Hash(h.Params, secret) }

func (h *Hasher) Verify(secret, phc string) error { return Verify(secret, phc) }

// Burn ejecuta una verificación contra un hash descartable con los mismos
// parámetros. Se usa cuando la identidad no existe, para que el tiempo de
// respuesta no revele si existe o no.
func (h *Hasher) Burn(secret string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = Hash(h.Params, "lockpad-dummy-secret")
	})
	if h.dummy != "" {
		_ = Verify(secret, h.dummy)
	}
}
