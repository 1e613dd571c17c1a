// Package i18n localizes the field-level messages shown for formula and path
// errors.
package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message, keyed by
// placeholder name (for example "details" for the offending reference).
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"node_not_found":                 "formula field no longer exists",
		"unresolvable_dependency":        "cannot resolve reference {details}",
		"self_reference":                 "formula refers to its own field via {details}",
		"circular_dependency":            "formulas depend on each other: {details}",
		"invalid_segment":                "invalid path segment {details}",
		"empty_segment":                  "empty path segment",
		"properties_without_name":        "\"properties\" must be followed by a name",
		"cannot_add_items_to_empty_path": "the root cannot be an array item",
		"cannot_replace_root":            "the root cannot be replaced",
		"cannot_remove_root":             "the root cannot be removed",
	},
	"ja": {
		"node_not_found":                 "数式フィールドが存在しません",
		"unresolvable_dependency":        "参照 {details} を解決できません",
		"self_reference":                 "数式が {details} で自身のフィールドを参照しています",
		"circular_dependency":            "数式が循環参照しています: {details}",
		"invalid_segment":                "パスのセグメント {details} が不正です",
		"empty_segment":                  "パスに空のセグメントがあります",
		"properties_without_name":        "\"properties\" の後に名前が必要です",
		"cannot_add_items_to_empty_path": "ルートを配列要素にはできません",
		"cannot_replace_root":            "ルートは置き換えられません",
		"cannot_remove_root":             "ルートは削除できません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return strings.TrimSpace(strings.ReplaceAll(msg, "  ", " "))
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
