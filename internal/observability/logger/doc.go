// Package logger expone un logger Zap único, con scoping por contexto.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En services y handlers:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Authorize"))
//	log.Debug("credential rejected", logger.Reason("mismatch"))
package logger
