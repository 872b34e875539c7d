package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"offio/backend/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	TokenTypeAccess = "access"
	TokenTypeAgent  = "agent"

	issuer = "offio"
)

// Claims custom JWT claims
type Claims struct {
	UserID     string `json:"user_id"`
	CompanyID  string `json:"company_id"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	TokenType  string `json:"token_type"` // "access" | "agent"
	jwtv5.RegisteredClaims
}

// Identity the subject a token is issued for
type Identity struct {
	UserID     string
	CompanyID  string
	Role       string
	Department string
}

// Manager JWT manager
type Manager struct {
	secret         []byte
	accessTokenTTL time.Duration
	agentTokenTTL  time.Duration
}

// NewManager creates a JWT manager
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
		agentTokenTTL:  cfg.AgentTokenTTL,
	}
}

// GenerateAccessToken token for the web console
func (m *Manager) GenerateAccessToken(id Identity) (string, error) {
	return m.generate(id, TokenTypeAccess, m.accessTokenTTL)
}

// GenerateAgentToken token for the desktop tracking agent
func (m *Manager) GenerateAgentToken(id Identity) (string, error) {
	return m.generate(id, TokenTypeAgent, m.agentTokenTTL)
}

func (m *Manager) generate(id Identity, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     id.UserID,
		CompanyID:  id.CompanyID,
		Role:       id.Role,
		Department: id.Department,
		TokenType:  tokenType,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   id.UserID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken parses and verifies a token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" || claims.CompanyID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
