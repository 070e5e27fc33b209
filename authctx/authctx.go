// Package authctx carries the per-request authentication capability.
// Authentication is lazy: the session is attached to every request, but the
// token is only verified (and the user loaded) when a resolver asks for
// identity. Public resolvers never pay for it.
package authctx

import (
	"context"
	"errors"
	"strings"

	"huntboard/auth"
	"huntboard/db"
	"huntboard/globals"
	"huntboard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserLookup loads the current user document for a verified token.
type UserLookup func(ctx context.Context, userID string) (*models.User, error)

type Session struct {
	header string
	lookup UserLookup
}

// NewSession builds a session from the raw Authorization header. The default
// lookup reads the users collection, so the capability always returns the
// current document, not a snapshot from token issuance.
func NewSession(header string) *Session {
	return NewSessionWithLookup(header, findUserByID)
}

func NewSessionWithLookup(header string, lookup UserLookup) *Session {
	return &Session{header: header, lookup: lookup}
}

// Authenticate verifies the bearer token and loads the acting user.
func (s *Session) Authenticate(ctx context.Context) (*models.User, error) {
	if s == nil || s.header == "" {
		return nil, errors.New("You have to login first!")
	}
	parts := strings.SplitN(s.header, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return nil, errors.New("Invalid Token")
	}
	claims, err := auth.VerifyToken(strings.TrimSpace(parts[1]))
	if err != nil {
		// surface the verification error as-is (expired, bad signature, ...)
		return nil, err
	}
	user, err := s.lookup(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func findUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := db.UsersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func With(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, globals.SessionKey, s)
}

// From extracts the session; an absent session behaves like an anonymous one.
func From(ctx context.Context) *Session {
	if s, ok := ctx.Value(globals.SessionKey).(*Session); ok {
		return s
	}
	return nil
}
