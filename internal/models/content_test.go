package models

import "testing"

func TestValidateSettingValue(t *testing.T) {
	cases := []struct {
		settingType, value string
		wantErr            bool
	}{
		{SettingTypeText, "n'importe quoi", false},
		{SettingTypeText, "", false},

		{SettingTypeNumber, "42", false},
		{SettingTypeNumber, "3.14", false},
		{SettingTypeNumber, "-10", false},
		{SettingTypeNumber, "abc", true},
		{SettingTypeNumber, "", true},

		{SettingTypeBoolean, "true", false},
		{SettingTypeBoolean, "false", false},
		{SettingTypeBoolean, "1", true},
		{SettingTypeBoolean, "yes", true},

		{SettingTypeJSON, `{"a": 1}`, false},
		{SettingTypeJSON, `[1, 2, 3]`, false},
		{SettingTypeJSON, `"texte"`, false},
		{SettingTypeJSON, `{broken`, true},

		{"unknown", "x", true},
	}

	for _, c := range cases {
		err := ValidateSettingValue(c.settingType, c.value)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateSettingValue(%s, %q) = %v, wantErr=%v", c.settingType, c.value, err, c.wantErr)
		}
	}
}

func TestIsValidSectionType(t *testing.T) {
	for _, s := range []string{"hero", "text", "gallery", "products", "banner", "faq"} {
		if !IsValidSectionType(s) {
			t.Errorf("%s devrait être un type de section valide", s)
		}
	}
	if IsValidSectionType("video") || IsValidSectionType("") {
		t.Error("type de section inconnu accepté")
	}
}
