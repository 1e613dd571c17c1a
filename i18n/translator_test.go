package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("unresolvable_dependency", map[string]string{"details": "price"}); msg != "cannot resolve reference price" {
		t.Fatalf("unexpected english message %q", msg)
	}

	SetLanguage("ja")
	if msg := T("unresolvable_dependency", map[string]string{"details": "price"}); msg != "参照 price を解決できません" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeAndMissingData(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected the code back, got %q", msg)
	}
	if msg := T("cannot_remove_root", nil); msg != "the root cannot be removed" {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := T("unresolvable_dependency", map[string]string{"details": ""}); msg != "cannot resolve reference" {
		t.Fatalf("empty details should leave no trailing space, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if msg := T("self_reference", nil); msg != "X:self_reference" {
		t.Fatalf("custom translator not used: %q", msg)
	}
}
