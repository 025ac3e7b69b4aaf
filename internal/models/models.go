// Package models declara las entidades persistidas y sus esquemas de clave.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/lockpad/internal/entity"
)

// Nombres de tipo en el registry.
const (
	TypeUser        = "user"
	TypeApplication = "application"
	TypeAPIKey      = "api_key"
)

var (
	// UserScheme: una partición "user", sk = user#<identifier>.
	UserScheme = entity.MustUnique("user")
	// ApplicationScheme: una partición por dueño, app#<owner> / app#<id>.
	ApplicationScheme = entity.MustOwned("app")
	// APIKeyScheme: una partición "api_key", sk = api_key#<id>.
	APIKeyScheme = entity.MustUnique("api_key")
)

// Registry contiene los tres tipos conocidos.
var Registry = mustRegistry(
	entity.Registration{Type: TypeUser, Scheme: UserScheme},
	entity.Registration{Type: TypeApplication, Scheme: ApplicationScheme},
	entity.Registration{Type: TypeAPIKey, Scheme: APIKeyScheme},
)

func mustRegistry(regs ...entity.Registration) *entity.Registry {
	r, err := entity.NewRegistry(regs...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewID genera un id ordenable por tiempo (UUIDv7).
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidID reporta si s es un UUID.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// User se direcciona por Identifier; Secret es el hash PHC.
type User struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Secret     string    `json:"secret"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) KeyScheme() entity.Scheme { return UserScheme }
func (u User) KeyValues() []string      { return []string{u.Identifier} }

// UserView es lo que se expone hacia afuera.
type UserView struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) View() UserView {
	return UserView{ID: u.ID, Identifier: u.Identifier, CreatedAt: u.CreatedAt}
}

type Application struct {
	OwnerID   string    `json:"owner_id"`
	ID        string    `json:"application_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Application) KeyScheme() entity.Scheme { return ApplicationScheme }
func (a Application) KeyValues() []string      { return []string{a.OwnerID, a.ID} }

// APIKey se direcciona por ID. Secret es el hash PHC; el secreto en
// claro sólo existe en la respuesta de creación.
type APIKey struct {
	ID        string    `json:"api_key_id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

func (k APIKey) KeyScheme() entity.Scheme { return APIKeyScheme }
func (k APIKey) KeyValues() []string      { return []string{k.ID} }

type APIKeyView struct {
	ID        string    `json:"api_key_id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (k APIKey) View() APIKeyView {
	return APIKeyView{ID: k.ID, OwnerID: k.OwnerID, Name: k.Name, CreatedAt: k.CreatedAt}
}
