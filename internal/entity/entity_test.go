package entity

import (
	"errors"
	"testing"
)

type user struct{ name string }

var userScheme = MustUnique("user")

func (u user) KeyScheme() Scheme   { return userScheme }
func (u user) KeyValues() []string { return []string{u.name} }

type app struct{ owner, id string }

var appScheme = MustOwned("app")

func (a app) KeyScheme() Scheme   { return appScheme }
func (a app) KeyValues() []string { return []string{a.owner, a.id} }

func TestDeriveAddress(t *testing.T) {
	cases := []struct {
		name string
		e    Entity
		want Address
	}{
		{"unique", user{"alice"}, Address{"user", "user#alice"}},
		{"owned", app{"u1", "a9"}, Address{"app#u1", "app#a9"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DeriveAddress(tc.e)
			if err != nil {
				t.Fatalf("DeriveAddress: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestKeyMatchesDerivedAddress(t *testing.T) {
	u := user{"bob"}
	derived, _ := DeriveAddress(u)
	lookup, err := userScheme.Key("bob")
	if err != nil {
		t.Fatal(err)
	}
	if derived != lookup {
		t.Fatalf("lookup %v != derived %v", lookup, derived)
	}
}

func TestKeyRejectsBadParts(t *testing.T) {
	if _, err := userScheme.Key("a#b"); !errors.Is(err, ErrInvalidKeyPart) {
		t.Fatalf("want ErrInvalidKeyPart, got %v", err)
	}
	if _, err := userScheme.Key(""); !errors.Is(err, ErrInvalidKeyPart) {
		t.Fatalf("want ErrInvalidKeyPart for empty, got %v", err)
	}
	if _, err := appScheme.Key("only-one"); !errors.Is(err, ErrArity) {
		t.Fatalf("want ErrArity, got %v", err)
	}
	if _, err := (Scheme{}).Key("x"); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("want ErrInvalidPrefix, got %v", err)
	}
}

func TestScope(t *testing.T) {
	q, err := userScheme.Scope()
	if err != nil {
		t.Fatal(err)
	}
	if q.PartitionKey != "user" || q.SortKeyPrefix != "user#" {
		t.Fatalf("unexpected unique scope %+v", q)
	}

	q, err = appScheme.Scope("u1")
	if err != nil {
		t.Fatal(err)
	}
	if q.PartitionKey != "app#u1" || q.SortKeyPrefix != "app#" {
		t.Fatalf("unexpected owned scope %+v", q)
	}
	a, _ := DeriveAddress(app{"u1", "x"})
	if !q.Matches(a) {
		t.Fatalf("scope %+v should match %v", q, a)
	}
	b, _ := DeriveAddress(app{"u2", "x"})
	if q.Matches(b) {
		t.Fatalf("scope %+v must not match other owner %v", q, b)
	}

	if _, err := appScheme.Scope(); !errors.Is(err, ErrArity) {
		t.Fatalf("owned scope without owner: %v", err)
	}
	if _, err := userScheme.Scope("x"); !errors.Is(err, ErrArity) {
		t.Fatalf("unique scope with namespace: %v", err)
	}
}

func TestValuesInvertsKey(t *testing.T) {
	a, _ := appScheme.Key("owner", "obj")
	vals, err := appScheme.Values(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 || vals[0] != "owner" || vals[1] != "obj" {
		t.Fatalf("got %v", vals)
	}
	if _, err := userScheme.Values(a); !errors.Is(err, ErrForeignAddress) {
		t.Fatalf("user scheme accepted app address: %v", err)
	}
}

func TestNewSchemeRejectsBadPrefix(t *testing.T) {
	for _, p := range []string{"", "a#b"} {
		if _, err := NewUnique(p); !errors.Is(err, ErrInvalidPrefix) {
			t.Fatalf("prefix %q: want ErrInvalidPrefix, got %v", p, err)
		}
	}
}
