package controllers

import "net/http"

type JWKSController struct {
	keys KeySet
}

// JWKS: GET /.well-known/jwks.json.
func (c *JWKSController) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(c.keys.JWKS())
}
