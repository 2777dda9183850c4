package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/pkg/auth"
)

func TestHandshakeTokenPrecedence(t *testing.T) {
	cases := []struct {
		name string
		hs   Handshake
		want string
	}{
		{"header wins", Handshake{Authorization: "Bearer h", AuthPayload: "p", Query: "q"}, "h"},
		{"payload over query", Handshake{AuthPayload: "p", Query: "q"}, "p"},
		{"query last", Handshake{Query: "q"}, "q"},
		{"malformed header falls through", Handshake{Authorization: "Basic x", Query: "q"}, "q"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, ok := tc.hs.Token()
			assert.True(t, ok)
			assert.Equal(t, tc.want, token)
		})
	}

	_, ok := Handshake{}.Token()
	assert.False(t, ok)
}

func TestAuthenticate(t *testing.T) {
	initTestLogger()
	ctx := context.Background()
	jwt := auth.NewJWTManager("secret", time.Minute)
	userID := uuid.New()
	token, err := jwt.Generate(userID.String())
	require.NoError(t, err)

	blacklist := &fakeBlacklist{revoked: map[string]bool{}}
	authenticator := NewSessionAuthenticator(jwt, blacklist)

	session, err := authenticator.Authenticate(ctx, Handshake{Query: token})
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	_, err = authenticator.Authenticate(ctx, Handshake{})
	assert.Equal(t, apperror.CodeAuthRequired, apperror.CodeOf(err))

	_, err = authenticator.Authenticate(ctx, Handshake{Authorization: "Bearer garbage"})
	assert.Equal(t, apperror.CodeAuthInvalid, apperror.CodeOf(err))

	foreign, err := auth.NewJWTManager("other", time.Minute).Generate(userID.String())
	require.NoError(t, err)
	_, err = authenticator.Authenticate(ctx, Handshake{AuthPayload: foreign})
	assert.Equal(t, apperror.CodeAuthInvalid, apperror.CodeOf(err))

	notUUID, err := jwt.Generate("alice")
	require.NoError(t, err)
	_, err = authenticator.Authenticate(ctx, Handshake{Query: notUUID})
	assert.Equal(t, apperror.CodeAuthInvalid, apperror.CodeOf(err))

	blacklist.revoked[token] = true
	_, err = authenticator.Authenticate(ctx, Handshake{Query: token})
	assert.Equal(t, apperror.CodeAuthInvalid, apperror.CodeOf(err))
}

func TestAuthenticateFailsClosedOnBlacklistError(t *testing.T) {
	initTestLogger()
	jwt := auth.NewJWTManager("secret", time.Minute)
	token, err := jwt.Generate(uuid.NewString())
	require.NoError(t, err)

	authenticator := NewSessionAuthenticator(jwt, &fakeBlacklist{err: errors.New("redis down")})
	_, err = authenticator.Authenticate(context.Background(), Handshake{Query: token})
	assert.Equal(t, apperror.CodeAuthInvalid, apperror.CodeOf(err))

	open := NewSessionAuthenticator(jwt, nil)
	_, err = open.Authenticate(context.Background(), Handshake{Query: token})
	assert.NoError(t, err)
}
