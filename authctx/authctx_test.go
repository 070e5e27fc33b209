package authctx

import (
	"context"
	"errors"
	"testing"

	"huntboard/auth"
	"huntboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookup(user *models.User, err error) UserLookup {
	return func(_ context.Context, _ string) (*models.User, error) {
		return user, err
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	s := NewSessionWithLookup("", stubLookup(nil, nil))
	_, err := s.Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "You have to login first!", err.Error())
}

func TestAuthenticateNilSession(t *testing.T) {
	var s *Session
	_, err := s.Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "You have to login first!", err.Error())
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	for _, header := range []string{"Bearer", "Bearer ", "justonetoken"} {
		s := NewSessionWithLookup(header, stubLookup(nil, nil))
		_, err := s.Authenticate(context.Background())
		require.Error(t, err, header)
		assert.Equal(t, "Invalid Token", err.Error(), header)
	}
}

func TestAuthenticateBadToken(t *testing.T) {
	s := NewSessionWithLookup("Bearer not-a-token", stubLookup(nil, nil))
	_, err := s.Authenticate(context.Background())
	assert.Error(t, err)
}

func TestAuthenticateLoadsUser(t *testing.T) {
	token, err := auth.SignToken("64f000000000000000000001", "tester", "tester@example.com")
	require.NoError(t, err)

	want := &models.User{ID: "64f000000000000000000001", Username: "tester"}
	s := NewSessionWithLookup("Bearer "+token, stubLookup(want, nil))

	user, err := s.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, user)
}

func TestAuthenticateLookupFailure(t *testing.T) {
	token, err := auth.SignToken("64f000000000000000000001", "tester", "tester@example.com")
	require.NoError(t, err)

	s := NewSessionWithLookup("Bearer "+token, stubLookup(nil, errors.New("User not found")))
	_, err = s.Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "User not found", err.Error())
}

func TestFromMissingSession(t *testing.T) {
	assert.Nil(t, From(context.Background()))
}

func TestWithAndFromRoundTrip(t *testing.T) {
	s := NewSessionWithLookup("Bearer x", stubLookup(nil, nil))
	ctx := With(context.Background(), s)
	assert.Same(t, s, From(ctx))
}
