package models

import "time"

// Known setting names. Only these rows exist; they are seeded by migration.
const (
	SettingLogo            = "logo"
	SettingFavicon         = "favicon"
	SettingName            = "name"
	SettingLanguage        = "language"
	SettingDescription     = "description"
	SettingKeyWords        = "keyWords"
	SettingMetaTitle       = "metaTitle"
	SettingMetaDescription = "metaDescription"
)

// SettingNames lists every known setting name.
var SettingNames = []string{
	SettingLogo,
	SettingFavicon,
	SettingName,
	SettingLanguage,
	SettingDescription,
	SettingKeyWords,
	SettingMetaTitle,
	SettingMetaDescription,
}

// Supported site languages.
const (
	LanguageEN = "en"
	LanguagePL = "pl"
)

// Setting is a named site-wide value.
type Setting struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     *string   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
