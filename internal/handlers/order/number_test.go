package order

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 42, 10, 0, time.UTC)
	n := GenerateOrderNumber(now)

	parts := strings.Split(n, "-")
	if len(parts) != 3 {
		t.Fatalf("format inattendu: %s", n)
	}
	if parts[0] != "VL" {
		t.Errorf("préfixe = %s", parts[0])
	}
	if parts[1] != "20260901154210" {
		t.Errorf("horodatage = %s", parts[1])
	}
	if len(parts[2]) != 5 {
		t.Errorf("suffixe = %s", parts[2])
	}
	for _, ch := range parts[2] {
		if !strings.ContainsRune(numberSuffixCharset, ch) {
			t.Errorf("caractère hors charset: %c dans %s", ch, parts[2])
		}
	}
}

func TestGenerateOrderNumberVaries(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateOrderNumber(now)] = true
	}
	// 32^5 combinaisons : 50 tirages identiques seraient un bug du générateur
	if len(seen) < 2 {
		t.Errorf("le suffixe aléatoire ne varie pas")
	}
}
