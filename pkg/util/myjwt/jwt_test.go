package myjwt

import (
	"testing"

	"FPKProgress/internal/config"
)

func TestGenerateAndParseToken(t *testing.T) {
	conf := config.GetConfig()
	oldKey := conf.JwtConfig.Key
	conf.JwtConfig.Key = "test-key"
	t.Cleanup(func() { conf.JwtConfig.Key = oldKey })

	token, err := GenerateToken("u-1", "alice", "org-1", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Uuid != "u-1" || claims.Username != "alice" || claims.OrgId != "org-1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	conf := config.GetConfig()
	oldKey := conf.JwtConfig.Key
	conf.JwtConfig.Key = "test-key"
	t.Cleanup(func() { conf.JwtConfig.Key = oldKey })

	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
