package product

import "testing"

func TestUniqueSlug(t *testing.T) {
	noCollision := func(string) bool { return false }

	if got := UniqueSlug("T-Shirt Été 2026", noCollision); got != "t-shirt-ete-2026" {
		t.Errorf("slug = %q", got)
	}

	taken := map[string]bool{"t-shirt": true, "t-shirt-2": true}
	got := UniqueSlug("T-Shirt", func(s string) bool { return taken[s] })
	if got != "t-shirt-3" {
		t.Errorf("slug suffixé = %q, attendu t-shirt-3", got)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	if !containsIgnoreCase("Chemise en Lin", "LIN") {
		t.Error("recherche insensible à la casse en défaut")
	}
	if containsIgnoreCase("Chemise", "pantalon") {
		t.Error("faux positif")
	}
	if !containsTagsIgnoreCase([]string{"été", "Coton"}, "coton") {
		t.Error("recherche dans les tags en défaut")
	}
}
