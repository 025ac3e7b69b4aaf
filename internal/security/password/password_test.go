package password

import (
	"errors"
	"strings"
	"testing"
)

// params baratos para tests
var fast = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify(t *testing.T) {
	h, err := Hash(fast, "hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC: %s", h)
	}
	if err := Verify("hunter2", h); err != nil {
		t.Fatalf("Verify(correct): %v", err)
	}
	if err := Verify("hunter3", h); !errors.Is(err, ErrMismatch) {
		t.Fatalf("Verify(wrong) = %v, want ErrMismatch", err)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, _ := Hash(fast, "same")
	b, _ := Hash(fast, "same")
	if a == b {
		t.Fatal("two hashes of the same secret are identical")
	}
}

func TestHashEmpty(t *testing.T) {
	if _, err := Hash(fast, ""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	good, _ := Hash(fast, "x")
	parts := strings.Split(good, "$")

	cases := map[string]string{
		"empty":         "",
		"bcrypt":        "$2a$10$abcdefghijklmnopqrstuv",
		"wrong version": strings.Replace(good, "v=19", "v=16", 1),
		"bad salt":      strings.Join([]string{"", parts[1], parts[2], parts[3], "!!!", parts[5]}, "$"),
		"bad param":     strings.Replace(good, "m=1024", "m=abc", 1),
		"huge memory":   strings.Replace(good, "m=1024", "m=999999999", 1),
		"extra field":   good + "$x",
	}
	for name, phc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := Verify("x", phc); !errors.Is(err, ErrFormat) {
				t.Fatalf("want ErrFormat, got %v", err)
			}
		})
	}
}

func TestHasher(t *testing.T) {
	h, err := NewHasher(fast)
	if err != nil {
		t.Fatal(err)
	}
	phc, err := h.Hash("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Verify("s3cret", phc); err != nil {
		t.Fatal(err)
	}
	h.Burn("anything")

	if _, err := NewHasher(Params{}); err == nil {
		t.Fatal("zero params accepted")
	}
}

func TestPolicy(t *testing.T) {
	p := Policy{MinLength: 8, RequireDigit: true, RequireUpper: true}
	if err := p.Check("Abcdefg1"); err != nil {
		t.Fatalf("valid secret rejected: %v", err)
	}
	err := p.Check("abc")
	if !errors.Is(err, ErrPolicy) {
		t.Fatalf("want ErrPolicy, got %v", err)
	}
	var pe *PolicyError
	if !errors.As(err, &pe) || len(pe.Reasons) != 3 {
		t.Fatalf("reasons: %#v", pe)
	}
	if err := (Policy{}).Check("hunter2"); err != nil {
		t.Fatalf("zero policy should accept anything: %v", err)
	}
}

func TestBlacklist(t *testing.T) {
	bl, err := ReadBlacklist(strings.NewReader("# comunes\nPassword\n123456\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if bl.Len() != 2 {
		t.Fatalf("len = %d", bl.Len())
	}
	if !bl.Contains(" password ") {
		t.Fatal("case/space-insensitive lookup failed")
	}
	if bl.Contains("hunter2") {
		t.Fatal("unexpected hit")
	}
	var nilList *Blacklist
	if nilList.Contains("x") {
		t.Fatal("nil blacklist must be empty")
	}
	empty, err := LoadBlacklist("")
	if err != nil || empty.Len() != 0 {
		t.Fatalf("LoadBlacklist(\"\") = %v, %v", empty, err)
	}
}
