package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/outfitcal/daybook/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("k")

	tok, err := GenerateToken("u-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, err := GetUserIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("expected u-1, got %s", userID)
	}
}

func TestGetUserIDFromToken_WrongKey(t *testing.T) {
	tok, err := GenerateToken("u-1", []byte("k1"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, []byte("k2"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateToken("u-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not-a-token", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
