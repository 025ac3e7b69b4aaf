package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Route(v string) zap.Field     { return zap.String("route", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }

// Duration registra la duración en milisegundos.
func Duration(d time.Duration) zap.Field {
	return zap.Float64("duration_ms", float64(d.Microseconds())/1000)
}

// Identidad

func UserID(v string) zap.Field     { return zap.String("user_id", v) }
func OwnerID(v string) zap.Field    { return zap.String("owner_id", v) }
func APIKeyID(v string) zap.Field   { return zap.String("api_key_id", v) }
func EntityType(v string) zap.Field { return zap.String("entity", v) }

// CredentialKind es "user" o "api_key"; nunca el secreto.
func CredentialKind(v string) zap.Field { return zap.String("credential_kind", v) }

// State es el estado del flujo de autorización.
func State(v string) zap.Field { return zap.String("state", v) }

// Reason explica un rechazo; sólo para logs, nunca para la respuesta.
func Reason(v string) zap.Field { return zap.String("reason", v) }

// PartitionKey y SortKey identifican un item de la tabla.
func PartitionKey(v string) zap.Field { return zap.String("pk", v) }
func SortKey(v string) zap.Field      { return zap.String("sk", v) }

// Sistema

func Component(v string) zap.Field  { return zap.String("component", v) }
func Layer(v string) zap.Field      { return zap.String("layer", v) }
func Op(v string) zap.Field         { return zap.String("op", v) }
func Err(err error) zap.Field       { return zap.Error(err) }
func Count(v int) zap.Field         { return zap.Int("count", v) }
func String(k, v string) zap.Field  { return zap.String(k, v) }
func Int(k string, v int) zap.Field { return zap.Int(k, v) }
func Any(k string, v any) zap.Field { return zap.Any(k, v) }
