// Package auth provides optional API key authentication for the condition
// service.
//
// Keys are supplied through the environment only. The authenticator keeps an
// HMAC-SHA256 digest of each key under a per-process secret, never the key
// itself, and compares digests in constant time.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// keyIDKey is the context key for the authenticated key ID.
const keyIDKey = contextKey("key_id")

// healthServicePrefix marks methods reachable without a key.
const healthServicePrefix = "/grpc.health.v1.Health/"

// Authenticator validates API keys against HMAC digests.
type Authenticator struct {
	secret  []byte
	digests map[string][]byte // key_id -> HMAC(secret, key)
}

// NewAuthenticator creates an authenticator accepting the given keys.
func NewAuthenticator(keys []string) (*Authenticator, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate HMAC secret: %w", err)
	}

	a := &Authenticator{
		secret:  secret,
		digests: make(map[string][]byte, len(keys)),
	}
	for i, key := range keys {
		keyID, _, err := ParseAPIKey(key)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i+1, err)
		}
		if _, exists := a.digests[keyID]; exists {
			return nil, fmt.Errorf("duplicate key_id %s", keyID)
		}
		a.digests[keyID] = computeHMAC(secret, key)
	}
	return a, nil
}

// Len returns the number of accepted keys.
func (a *Authenticator) Len() int {
	return len(a.digests)
}

// Authenticate validates an API key and returns its key ID.
func (a *Authenticator) Authenticate(apiKey string) (string, error) {
	keyID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	expected, ok := a.digests[keyID]
	if !ok {
		return "", ErrUnknownKey
	}
	if !hmac.Equal(expected, computeHMAC(a.secret, apiKey)) {
		return "", ErrInvalidKey
	}
	return keyID, nil
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
// Health checks pass through.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		apiKeys := md.Get("x-api-key")
		if len(apiKeys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		keyID, err := a.Authenticate(apiKeys[0])
		if err != nil {
			if errors.Is(err, ErrUnknownKey) {
				err = ErrInvalidKey
			}
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(context.WithValue(ctx, keyIDKey, keyID), req)
	}
}

// KeyIDFromContext extracts the authenticated key ID from context.
// Returns empty string if not found.
func KeyIDFromContext(ctx context.Context) string {
	if keyID, ok := ctx.Value(keyIDKey).(string); ok {
		return keyID
	}
	return ""
}
