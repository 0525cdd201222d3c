package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// StaticTokenSource hands out a fixed bearer token.
func StaticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

type devTokenSource struct {
	secret []byte
	userId string
	ttl    time.Duration
	now    func() time.Time
}

// DevTokenSource mints HS256 tokens accepted by the stub backend. Tokens are
// cached and re-minted shortly before they expire.
func DevTokenSource(secret, userId string, ttl time.Duration) (oauth2.TokenSource, error) {
	if secret == "" {
		return nil, errors.New("auth: dev token secret is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	src := &devTokenSource{secret: []byte(secret), userId: userId, ttl: ttl, now: time.Now}
	return oauth2.ReuseTokenSource(nil, src), nil
}

func (s *devTokenSource) Token() (*oauth2.Token, error) {
	now := s.now()
	expiry := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":     s.userId,
		"user_id": s.userId,
		"iat":     now.Unix(),
		"exp":     expiry.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: expiry}, nil
}

// NoToken is used when the backend runs without authentication.
type NoToken struct{}

func (NoToken) Token() (*oauth2.Token, error) {
	return &oauth2.Token{}, nil
}

// AuthorizationHeader formats tok for the Authorization header. It returns
// an empty string for tokens without an access token.
func AuthorizationHeader(tok *oauth2.Token) string {
	if tok == nil || tok.AccessToken == "" {
		return ""
	}
	return tok.Type() + " " + tok.AccessToken
}
