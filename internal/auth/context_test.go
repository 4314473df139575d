// ABOUTME: Unit tests for the identity context helpers
// ABOUTME: Tests context propagation and missing or mistyped values

package auth

import (
	"context"
	"testing"
)

func TestWithIdentity_FromContext(t *testing.T) {
	id := &Identity{UserID: 7, Username: "admin", Role: "admin", SessionID: "abc"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext() returned nil")
	}
	if got.UserID != 7 || got.Username != "admin" || got.SessionID != "abc" {
		t.Errorf("FromContext() = %+v, want %+v", got, id)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), identityContextKey{}, "not an identity")
	if got := FromContext(ctx); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}
