package auth

import (
	"context"
	"testing"

	"github.com/shoply/shoply/internal/model"
)

func TestClaimsContext_RoundTrip(t *testing.T) {
	t.Parallel()

	claims := &Claims{UserID: "usr_01", Email: "alice@example.com", Role: model.RoleUser}
	ctx := ContextWithClaims(context.Background(), claims)

	got := ClaimsFromContext(ctx)
	if got == nil {
		t.Fatal("expected claims in context")
	}
	if got.UserID != "usr_01" {
		t.Errorf("expected user id usr_01, got %s", got.UserID)
	}
	if UserIDFromContext(ctx) != "usr_01" {
		t.Errorf("UserIDFromContext mismatch: %s", UserIDFromContext(ctx))
	}
}

func TestClaimsContext_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if ClaimsFromContext(ctx) != nil {
		t.Error("expected nil claims on bare context")
	}
	if UserIDFromContext(ctx) != "" {
		t.Error("expected empty user id on bare context")
	}
}
