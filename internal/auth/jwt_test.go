package auth

import (
	"testing"
	"time"

	"github.com/erazemk/jedilnik/internal/model"
)

func testUser(role string, restaurantID *int64) *model.User {
	return &model.User{ID: 1, Username: "chef", Role: role, AssignedRestaurant: restaurantID}
}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"
	rid := int64(7)

	token, err := GenerateToken(secret, testUser(model.RoleAdmin, &rid))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "chef" {
		t.Errorf("expected username 'chef', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.RestaurantID == nil || *claims.RestaurantID != 7 {
		t.Errorf("expected restaurant_id 7, got %v", claims.RestaurantID)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestGenerateTokenUniqueJTI(t *testing.T) {
	u := testUser(model.RoleMaster, nil)
	t1, _ := GenerateToken("s", u)
	t2, _ := GenerateToken("s", u)

	c1, _ := ValidateToken("s", t1)
	c2, _ := ValidateToken("s", t2)
	if c1.ID == c2.ID {
		t.Error("expected distinct JTIs")
	}
	if c1.RestaurantID != nil {
		t.Errorf("expected no restaurant for master, got %v", *c1.RestaurantID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", testUser(model.RoleAdmin, nil))

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, testUser(model.RoleAdmin, nil))
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
