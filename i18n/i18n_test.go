package i18n

import "testing"

func TestTranslationsFallsBackToEnglish(t *testing.T) {
	en := Translations("en")
	if en["app_name"] == "" {
		t.Fatal("english table missing app_name")
	}

	unknown := Translations("fr")
	if unknown["app_name"] != en["app_name"] {
		t.Errorf("unknown language should fall back to english")
	}
}

func TestAllLocalesCoverEnglishKeys(t *testing.T) {
	en := locales["en"]
	for lang, table := range locales {
		for key := range en {
			if table[key] == "" {
				t.Errorf("locale %s missing key %s", lang, key)
			}
		}
	}
}
