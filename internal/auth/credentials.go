package auth

import (
	"encoding/json"
	"mime"
	"net/url"
	"strings"

	"github.com/dropDatabas3/lockpad/internal/entity"
)

// Kind distingue las dos formas de credencial.
type Kind int

const (
	KindUser Kind = iota + 1
	KindAPIKey
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAPIKey:
		return "api_key"
	default:
		return "unknown"
	}
}

// maxIdentifierLen acota identificadores y key ids.
const maxIdentifierLen = 256

// Credentials es una credencial ya clasificada. Para KindUser, ID es el
// identificador del usuario; para KindAPIKey, el id de la key.
type Credentials struct {
	Kind   Kind
	ID     string
	Secret string
}

func UserCredentials(identifier, secret string) Credentials {
	return Credentials{Kind: KindUser, ID: identifier, Secret: secret}
}

func APIKeyCredentials(keyID, secret string) Credentials {
	return Credentials{Kind: KindAPIKey, ID: keyID, Secret: secret}
}

// Validate aplica las reglas de forma; no toca storage.
func (c Credentials) Validate() error {
	if c.Kind != KindUser && c.Kind != KindAPIKey {
		return invalid("", "unknown credential kind")
	}
	field := "identifier"
	if c.Kind == KindAPIKey {
		field = "key_id"
	}
	if c.ID == "" {
		return invalid(field, "empty")
	}
	if len(c.ID) > maxIdentifierLen {
		return invalid(field, "too long")
	}
	if !entity.ValidKeyPart(c.ID) {
		return invalid(field, "contains reserved character "+entity.Separator)
	}
	if c.Secret == "" {
		return invalid("secret", "empty")
	}
	return nil
}

// rawCredentials acepta los alias de los formularios (username/password).
type rawCredentials struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	KeyID      string `json:"key_id"`
	APIKeyID   string `json:"api_key_id"`
	Secret     string `json:"secret"`
	Password   string `json:"password"`
}

func pick(field, a, b string) (string, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a != "" && b != "" && a != b:
		return "", invalid(field, "conflicting aliases")
	case a != "":
		return a, nil
	default:
		return b, nil
	}
}

// classify decide la forma. Exactamente una de identifier / key_id.
func (r rawCredentials) classify() (Credentials, error) {
	id, err := pick("identifier", r.Identifier, r.Username)
	if err != nil {
		return Credentials{}, err
	}
	keyID, err := pick("key_id", r.KeyID, r.APIKeyID)
	if err != nil {
		return Credentials{}, err
	}
	// el secreto no se recorta: los espacios son parte del secreto
	secret := r.Secret
	if secret == "" {
		secret = r.Password
	} else if r.Password != "" && r.Password != secret {
		return Credentials{}, invalid("secret", "conflicting aliases")
	}

	var c Credentials
	switch {
	case id != "" && keyID != "":
		return Credentials{}, invalid("", "both identifier and key_id present")
	case id != "":
		c = UserCredentials(id, secret)
	case keyID != "":
		c = APIKeyCredentials(keyID, secret)
	default:
		return Credentials{}, invalid("", "neither identifier nor key_id present")
	}
	return c, c.Validate()
}

// ParseJSON decodifica y clasifica un body JSON.
func ParseJSON(body []byte) (Credentials, error) {
	var raw rawCredentials
	if err := json.Unmarshal(body, &raw); err != nil {
		return Credentials{}, invalid("", "malformed json")
	}
	return raw.classify()
}

// ParseForm clasifica un body application/x-www-form-urlencoded.
func ParseForm(values url.Values) (Credentials, error) {
	raw := rawCredentials{
		Identifier: values.Get("identifier"),
		Username:   values.Get("username"),
		KeyID:      values.Get("key_id"),
		APIKeyID:   values.Get("api_key_id"),
		Secret:     values.Get("secret"),
		Password:   values.Get("password"),
	}
	return raw.classify()
}

// Decode elige el parser según Content-Type.
func Decode(contentType string, body []byte) (Credentials, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = ""
	}
	switch mt {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return Credentials{}, invalid("", "malformed form")
		}
		return ParseForm(values)
	case "application/json", "":
		return ParseJSON(body)
	default:
		return Credentials{}, invalid("", "unsupported content type "+mt)
	}
}
