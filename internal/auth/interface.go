package auth

import "minote/internal/domain/models"

// JWTVerifier validates bearer tokens and extracts the caller identity.
// The rest of the system only ever sees the subject id coming out of it.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid
	// signature.
	VerifyToken(tokenString string) (*models.AuthClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
