package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nanostudio/server/internal/model"
)

const (
	// APIKeyHeader carries the caller's Gemini API key.
	APIKeyHeader = "X-Goog-Api-Key"
	// CredentialKey is the gin context key for the resolved credential.
	CredentialKey = "credential"
)

// Credential resolves the credential for each request from the API key
// header, falling back to the server's configured key. It never rejects a
// request; operations that need a credential report its absence themselves.
func Credential(fallback model.Credential) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := model.Credential(strings.TrimSpace(c.GetHeader(APIKeyHeader)))
		if cred.IsZero() {
			cred = fallback
		}
		c.Set(CredentialKey, cred)
		c.Next()
	}
}

// GetCredential returns the credential resolved by Credential.
func GetCredential(c *gin.Context) model.Credential {
	if v, ok := c.Get(CredentialKey); ok {
		if cred, ok := v.(model.Credential); ok {
			return cred
		}
	}
	return ""
}
