package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !IsArgon2Hash(hash) {
		t.Errorf("format de hash inattendu: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil || !ok {
		t.Errorf("le bon mot de passe est refusé: ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword("mauvais mot de passe", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Error("un mauvais mot de passe est accepté")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, _ := HashPassword("pass")
	h2, _ := HashPassword("pass")
	if h1 == h2 {
		t.Error("deux hashs du même mot de passe sont identiques (sel fixe ?)")
	}
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	if _, err := VerifyPassword("x", "pas-un-hash"); err == nil {
		t.Error("hash invalide accepté")
	}
	if IsArgon2Hash("$2a$10$bcrypthash") {
		t.Error("hash bcrypt détecté comme argon2")
	}
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		t.Errorf("format PHC inattendu: %s", hash)
	}
}
