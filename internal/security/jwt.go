package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors.
var (
	// ErrInvalidToken indicates a token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// Token audiences keep session tokens and request tickets from being swapped.
const (
	audienceSession = "itm-access/session"
	audienceTicket  = "itm-access/ticket"
)

// SessionClaims is the flat claim set of an authorized session.
type SessionClaims struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Groups      []string `json:"groups,omitempty"`
	Department  string   `json:"department,omitempty"`
	CompanyCode string   `json:"company_code,omitempty"`
	Site        string   `json:"site,omitempty"`
	Sdwt        string   `json:"sdwt,omitempty"`
	jwt.RegisteredClaims
}

// TicketClaims lets a denied principal file one guest request without a session.
type TicketClaims struct {
	LoginID        string `json:"login_id"`
	DepartmentCode string `json:"dept_code,omitempty"`
	DepartmentName string `json:"dept_name,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret       []byte
	expiry       time.Duration
	ticketExpiry time.Duration
	now          func() time.Time
}

// NewIssuer constructs an Issuer. The secret must not be empty.
func NewIssuer(secret string, expiry, ticketExpiry time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("security: empty jwt secret")
	}
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	if ticketExpiry <= 0 {
		ticketExpiry = 30 * time.Minute
	}
	return &Issuer{secret: []byte(secret), expiry: expiry, ticketExpiry: ticketExpiry, now: time.Now}, nil
}

// IssueSession signs a session token. Subject is always the user id.
func (i *Issuer) IssueSession(claims SessionClaims) (string, error) {
	claims.RegisteredClaims = i.registered(claims.UserID, audienceSession, i.expiry)
	return i.sign(claims)
}

// ParseSession validates a session token and returns its claims.
func (i *Issuer) ParseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := i.parse(tokenString, claims, audienceSession); err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueTicket signs a guest request ticket.
func (i *Issuer) IssueTicket(claims TicketClaims) (string, error) {
	claims.RegisteredClaims = i.registered(claims.LoginID, audienceTicket, i.ticketExpiry)
	return i.sign(claims)
}

// ParseTicket validates a guest request ticket and returns its claims.
func (i *Issuer) ParseTicket(tokenString string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	if err := i.parse(tokenString, claims, audienceTicket); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *Issuer) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now().UTC()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithAudience(audience), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
