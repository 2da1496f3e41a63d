package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/pkg/xcache"
	"github.com/looplj/datavault/internal/server/db"
)

type AuthServiceParams struct {
	fx.In

	Config AuthConfig
	State  *db.State
}

type AuthService struct {
	config     AuthConfig
	state      *db.State
	tokenCache xcache.Cache[objects.AnalyticsToken]
}

func NewAuthService(params AuthServiceParams) (*AuthService, error) {
	cache, err := xcache.NewFromConfig[objects.AnalyticsToken](params.Config.TokenCache, "analytics_token")
	if err != nil {
		return nil, fmt.Errorf("failed to build token cache: %w", err)
	}

	return &AuthService{
		config:     params.Config,
		state:      params.State,
		tokenCache: cache,
	}, nil
}

// GenerateAnalyticsToken generates a random token with the dv- prefix.
func GenerateAnalyticsToken() (string, error) {
	bytes := make([]byte, 24)

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return "dv-" + hex.EncodeToString(bytes), nil
}

func tokenCacheKey(token string) string {
	return strconv.FormatUint(xxhash.Sum64String(token), 16)
}

func (s *AuthService) tokenLifetime() time.Duration {
	if s.config.TokenLifetime > 0 {
		return s.config.TokenLifetime
	}

	return DefaultTokenLifetime
}

// ResolveCaller returns the identity the request acts as.
// A supplied token must be registered and wins over the direct identity; without a token an
// anonymous direct identity is rejected.
func (s *AuthService) ResolveCaller(ctx context.Context, direct objects.Identity, token *string) (objects.Identity, error) {
	if token == nil {
		if direct.IsAnonymous() {
			return "", ErrAnonymousUnauthorized
		}

		return direct, nil
	}

	t, err := s.lookupToken(ctx, *token)
	if err != nil {
		return "", err
	}

	if s.config.EnforceTokenExpiry && t.Expired(s.state.Now()) {
		return "", ErrTokenExpired
	}

	return t.Identity, nil
}

func (s *AuthService) lookupToken(ctx context.Context, token string) (objects.AnalyticsToken, error) {
	key := tokenCacheKey(token)

	if cached, err := s.tokenCache.Get(ctx, key); err == nil && cached.Token == token {
		return cached, nil
	}

	t, ok := s.state.LookupToken(token)
	if !ok {
		return objects.AnalyticsToken{}, ErrTokenNotFound
	}

	if err := s.tokenCache.Set(ctx, key, t); err != nil {
		log.Warn(ctx, "failed to cache analytics token", log.Cause(err))
	}

	return t, nil
}

// RegisterToken binds token to caller, replacing the caller's previous token.
// An empty token is replaced by a generated one.
func (s *AuthService) RegisterToken(ctx context.Context, caller objects.Identity, token string) (objects.AnalyticsToken, error) {
	if caller.IsAnonymous() {
		return objects.AnalyticsToken{}, ErrAnonymousUnauthorized
	}

	if token == "" {
		generated, err := GenerateAnalyticsToken()
		if err != nil {
			return objects.AnalyticsToken{}, err
		}

		token = generated
	}

	if prev, ok := s.state.TokenOf(caller); ok {
		s.evictToken(ctx, prev.Token)
	}

	if t, ok := s.state.LookupToken(token); ok && t.Identity != caller {
		log.Warn(ctx, "analytics token rebound to a new identity",
			log.String("previous", t.Identity.String()),
			log.String("identity", caller.String()))
	}

	s.evictToken(ctx, token)

	registered := s.state.RegisterToken(caller, token, s.tokenLifetime())

	log.Info(ctx, "analytics token registered", log.String("identity", caller.String()))

	return registered, nil
}

// EvictTokens drops cached lookups, used after tokens are removed from the store.
func (s *AuthService) EvictTokens(ctx context.Context, tokens []objects.AnalyticsToken) {
	for _, t := range tokens {
		s.evictToken(ctx, t.Token)
	}
}

func (s *AuthService) evictToken(ctx context.Context, token string) {
	if err := s.tokenCache.Delete(ctx, tokenCacheKey(token)); err != nil {
		log.Warn(ctx, "failed to evict analytics token", log.Cause(err))
	}
}

// GenerateJWT signs an HS256 token whose subject is identity.
func (s *AuthService) GenerateJWT(identity objects.Identity, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}

	now := s.state.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   identity.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateJWT validates tokenString and returns its subject.
func (s *AuthService) AuthenticateJWT(tokenString string) (objects.Identity, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("%w: jwt secret is not configured", ErrInvalidJWT)
	}

	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidJWT, token.Header["alg"])
		}

		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.state.Now))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse jwt token: %w", ErrInvalidJWT, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: invalid token claims", ErrInvalidJWT)
	}

	return objects.Identity(claims.Subject), nil
}
