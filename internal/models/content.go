package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gocql/gocql"
)

type Page struct {
	ID             gocql.UUID    `json:"id"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Sections       []PageSection `json:"sections"`
	SEOTitle       string        `json:"seo_title,omitempty"`
	SEODescription string        `json:"seo_description,omitempty"`
	IsPublished    bool          `json:"is_published"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// PageSection : bloc de contenu typé (hero, texte, galerie...). Le champ Data
// reste du JSON libre mais le type est validé à l'entrée.
type PageSection struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var pageSectionTypes = map[string]bool{
	"hero":     true,
	"text":     true,
	"gallery":  true,
	"products": true,
	"banner":   true,
	"faq":      true,
}

func IsValidSectionType(t string) bool {
	return pageSectionTypes[t]
}

type Menu struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"`
	Location  string     `json:"location"` // "header", "footer"
	Items     []MenuItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type MenuItem struct {
	Label    string     `json:"label"`
	URL      string     `json:"url"`
	Children []MenuItem `json:"children,omitempty"`
}

// Setting : paire clé/valeur typée. La valeur est stockée en texte mais validée
// contre le type déclaré avant toute écriture — pas de "any" opaque en base.
type Setting struct {
	Key       string    `json:"key"`
	Type      string    `json:"type"` // "text", "number", "boolean", "json"
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	SettingTypeText    = "text"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

// ValidateSettingValue vérifie que la valeur respecte le type déclaré.
func ValidateSettingValue(settingType, value string) error {
	switch settingType {
	case SettingTypeText:
		return nil
	case SettingTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("valeur numérique invalide: %q", value)
		}
		return nil
	case SettingTypeBoolean:
		if value != "true" && value != "false" {
			return fmt.Errorf("valeur booléenne invalide: %q", value)
		}
		return nil
	case SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("JSON invalide")
		}
		return nil
	default:
		return fmt.Errorf("type de setting inconnu: %q", settingType)
	}
}
