package biz

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/pkg/xcache"
	"github.com/looplj/datavault/internal/pkg/xredis"
)

func TestGenerateAnalyticsToken(t *testing.T) {
	token, err := GenerateAnalyticsToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "dv-"))
	assert.Len(t, token, 3+48)

	other, err := GenerateAnalyticsToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestAuthService_ResolveCaller(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, err := env.auth.RegisterToken(t.Context(), "alice", "tok-alice")
	require.NoError(t, err)

	tests := []struct {
		name    string
		direct  objects.Identity
		token   *string
		want    objects.Identity
		wantErr error
	}{
		{name: "direct identity", direct: "bob", want: "bob"},
		{name: "anonymous without token", direct: objects.AnonymousIdentity, wantErr: ErrAnonymousUnauthorized},
		{name: "empty identity without token", direct: "", wantErr: ErrAnonymousUnauthorized},
		{name: "token wins over direct", direct: "bob", token: strPtr("tok-alice"), want: "alice"},
		{name: "token rescues anonymous", direct: objects.AnonymousIdentity, token: strPtr("tok-alice"), want: "alice"},
		{name: "unknown token", direct: "bob", token: strPtr("nope"), wantErr: ErrTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.auth.ResolveCaller(t.Context(), tt.direct, tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthService_RegisterToken(t *testing.T) {
	env := newTestEnv(t, envOptions{auth: AuthConfig{TokenCache: xcache.Config{Mode: xcache.ModeMemory}}})
	ctx := t.Context()

	first, err := env.auth.RegisterToken(ctx, "alice", "first")
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenLifetime, first.Lifetime)
	assert.Equal(t, epoch, first.IssuedAt)
	assert.Equal(t, epoch.Add(DefaultTokenLifetime), first.ExpireAt)

	got, err := env.auth.ResolveCaller(ctx, "", strPtr("first"))
	require.NoError(t, err)
	assert.Equal(t, objects.Identity("alice"), got)

	_, err = env.auth.RegisterToken(ctx, "alice", "second")
	require.NoError(t, err)

	_, err = env.auth.ResolveCaller(ctx, "", strPtr("first"))
	require.ErrorIs(t, err, ErrTokenNotFound)

	generated, err := env.auth.RegisterToken(ctx, "bob", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated.Token, "dv-"))

	_, err = env.auth.RegisterToken(ctx, objects.AnonymousIdentity, "x")
	require.ErrorIs(t, err, ErrAnonymousUnauthorized)
}

func TestAuthService_TokenRebindEvictsCache(t *testing.T) {
	env := newTestEnv(t, envOptions{auth: AuthConfig{TokenCache: xcache.Config{Mode: xcache.ModeMemory}}})
	ctx := t.Context()

	_, err := env.auth.RegisterToken(ctx, "alice", "shared")
	require.NoError(t, err)

	got, err := env.auth.ResolveCaller(ctx, "", strPtr("shared"))
	require.NoError(t, err)
	require.Equal(t, objects.Identity("alice"), got)

	_, err = env.auth.RegisterToken(ctx, "bob", "shared")
	require.NoError(t, err)

	got, err = env.auth.ResolveCaller(ctx, "", strPtr("shared"))
	require.NoError(t, err)
	assert.Equal(t, objects.Identity("bob"), got)
}

func TestAuthService_TokenExpiry(t *testing.T) {
	t.Run("not enforced by default", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		_, err := env.auth.RegisterToken(t.Context(), "alice", "tok")
		require.NoError(t, err)

		env.clock.Advance(48 * time.Hour)

		got, err := env.auth.ResolveCaller(t.Context(), "", strPtr("tok"))
		require.NoError(t, err)
		assert.Equal(t, objects.Identity("alice"), got)
	})

	t.Run("enforced", func(t *testing.T) {
		env := newTestEnv(t, envOptions{auth: AuthConfig{EnforceTokenExpiry: true, TokenLifetime: time.Minute}})
		_, err := env.auth.RegisterToken(t.Context(), "alice", "tok")
		require.NoError(t, err)

		env.clock.Advance(30 * time.Second)

		_, err = env.auth.ResolveCaller(t.Context(), "", strPtr("tok"))
		require.NoError(t, err)

		env.clock.Advance(time.Minute)

		_, err = env.auth.ResolveCaller(t.Context(), "", strPtr("tok"))
		require.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestAuthService_RedisTokenCache(t *testing.T) {
	mr := miniredis.RunT(t)

	env := newTestEnv(t, envOptions{auth: AuthConfig{TokenCache: xcache.Config{
		Mode:  xcache.ModeRedis,
		Redis: xredis.Config{Addr: mr.Addr()},
	}}})
	ctx := t.Context()

	_, err := env.auth.RegisterToken(ctx, "alice", "tok")
	require.NoError(t, err)

	_, err = env.auth.ResolveCaller(ctx, "", strPtr("tok"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("analytics_token:"+tokenCacheKey("tok")))

	_, err = env.auth.RegisterToken(ctx, "alice", "tok2")
	require.NoError(t, err)
	assert.False(t, mr.Exists("analytics_token:"+tokenCacheKey("tok")))
}

func TestAuthService_JWT(t *testing.T) {
	env := newTestEnv(t, envOptions{auth: AuthConfig{JWTSecret: "s3cret"}})

	signed, err := env.auth.GenerateJWT("alice", time.Hour)
	require.NoError(t, err)

	identity, err := env.auth.AuthenticateJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, objects.Identity("alice"), identity)

	env.clock.Advance(2 * time.Hour)

	_, err = env.auth.AuthenticateJWT(signed)
	require.ErrorIs(t, err, ErrInvalidJWT)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "mallory"}).SignedString([]byte("other"))
	require.NoError(t, err)

	_, err = env.auth.AuthenticateJWT(forged)
	require.ErrorIs(t, err, ErrInvalidJWT)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = env.auth.AuthenticateJWT(noSubject)
	require.ErrorIs(t, err, ErrInvalidJWT)
}

func TestAuthService_JWTWithoutSecret(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	_, err := env.auth.GenerateJWT("alice", time.Hour)
	require.Error(t, err)

	_, err = env.auth.AuthenticateJWT("whatever")
	require.ErrorIs(t, err, ErrInvalidJWT)
}
