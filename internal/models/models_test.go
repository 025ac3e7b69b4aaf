package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dropDatabas3/lockpad/internal/entity"
)

func TestAddresses(t *testing.T) {
	cases := []struct {
		name string
		e    entity.Entity
		want entity.Address
		typ  string
	}{
		{"user", User{ID: "u1", Identifier: "alice"}, entity.Address{PartitionKey: "user", SortKey: "user#alice"}, TypeUser},
		{"application", Application{OwnerID: "u1", ID: "a1"}, entity.Address{PartitionKey: "app#u1", SortKey: "app#a1"}, TypeApplication},
		{"api key", APIKey{ID: "k1", OwnerID: "u1"}, entity.Address{PartitionKey: "api_key", SortKey: "api_key#k1"}, TypeAPIKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := entity.DeriveAddress(tc.e)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			typ, err := Registry.Resolve(got)
			if err != nil || typ != tc.typ {
				t.Fatalf("Resolve = %q, %v", typ, err)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatal("duplicate ids")
	}
	if !ValidID(a) || strings.Contains(a, entity.Separator) {
		t.Fatalf("bad id %q", a)
	}
	if ValidID("nope") {
		t.Fatal("ValidID accepted garbage")
	}
}

func TestViewsHideHash(t *testing.T) {
	u := User{ID: "1", Identifier: "alice", Secret: "$argon2id$..."}
	b, _ := json.Marshal(u.View())
	if strings.Contains(string(b), "argon2") {
		t.Fatalf("user view leaks hash: %s", b)
	}
	k := APIKey{ID: "k", OwnerID: "o", Secret: "$argon2id$..."}
	b, _ = json.Marshal(k.View())
	if strings.Contains(string(b), "secret") {
		t.Fatalf("api key view leaks secret: %s", b)
	}
}
