package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/utils"
)

type JWTMgr interface {
	GenerateJWT(claims jwt.Claims) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	GenerateClaims(loginCode string, role roles.Role, sessionId string) jwt.Claims
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager handles JWT generation, signing, and validation.
type JWTManager struct {
	privateKey  ed25519.PrivateKey
	publicKey   ed25519.PublicKey
	keyPairPath string
}

// NewJWTManagerFromFile loads the key pair from the configured path,
// generating and persisting a fresh pair on first start.
func NewJWTManagerFromFile(path string) (JWTMgr, error) {
	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		// No key yet for initial setup, generate a new key pair
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	return &JWTManager{
		privateKey:  privateKey,
		publicKey:   publicKey,
		keyPairPath: path,
	}, nil
}

// NewJWTManager creates a JWTManager from an in-memory key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) JWTMgr {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
	}
}

// GenerateClaims generates the standard JWT claims. The session id ties
// the token to the server-side session holding the role pools.
func (jm *JWTManager) GenerateClaims(loginCode string, role roles.Role, sessionId string) jwt.Claims {
	return jwt.MapClaims{
		"iss":  "campus-server",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
		"sub":  loginCode,
		"role": role.String(),
		"sid":  sessionId,
	}
}

// GenerateJWT generates a new JWT with the given claims.
func (jm *JWTManager) GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT validates the given JWT and returns the claims if valid.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return jm.publicKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// JWTMiddleware validates the bearer token and stores its claims in the
// request context.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		claims, err := jm.ValidateJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
			return
		}

		c.Set(utils.ClaimsKey.String(), claims.(jwt.MapClaims))
		c.Next()
	}
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	// Save the new key pair to a file for persistence
	err = saveKeyPair(privateKey, publicKey, path)
	if err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := append(privateKey, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0644)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	privateKey := ed25519.PrivateKey(keyPairBytes[:ed25519.PrivateKeySize])
	publicKey := ed25519.PublicKey(keyPairBytes[ed25519.PrivateKeySize:])

	return privateKey, publicKey, nil
}
