package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// mockI18nService is a test double for I18nService.
type mockI18nService struct {
	listResult   *I18nListResult
	modifyResult *I18nModifyResult
	err          error

	selector string
	lang     string
	label    string
	apply    bool
	called   string
}

func (m *mockI18nService) ListTranslations(ctx context.Context, selector string) (*I18nListResult, error) {
	m.called, m.selector = "list", selector
	return m.listResult, m.err
}

func (m *mockI18nService) SetTranslation(ctx context.Context, selector, lang, label string, apply bool) (*I18nModifyResult, error) {
	m.called, m.selector, m.lang, m.label, m.apply = "set", selector, lang, label, apply
	return m.modifyResult, m.err
}

func (m *mockI18nService) RemoveTranslation(ctx context.Context, selector, lang string, apply bool) (*I18nModifyResult, error) {
	m.called, m.selector, m.lang, m.apply = "remove", selector, lang, apply
	return m.modifyResult, m.err
}

func homeInfo() ItemInfo {
	return ItemInfo{ID: "1", Key: "HOME", Name: "Home"}
}

func TestI18nListCmd_SortedOutput(t *testing.T) {
	svc := &mockI18nService{listResult: &I18nListResult{
		Item:         homeInfo(),
		Translations: map[string]string{"fr": "Accueil", "de": "Startseite"},
	}}

	out, err := executeWithRoot(t, NewI18nCmd(svc), "i18n", "list", "HOME")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "de\tStartseite\nfr\tAccueil\n" {
		t.Errorf("output = %q", out)
	}
}

func TestI18nListCmd_JSONOutput(t *testing.T) {
	svc := &mockI18nService{listResult: &I18nListResult{Item: homeInfo(), Translations: map[string]string{}}}

	out, err := executeWithRoot(t, NewI18nCmd(svc), "i18n", "list", "HOME", "--json")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"translations":{}`) {
		t.Errorf("output = %s", out)
	}
}

func TestI18nSetCmd_CanonicalizesLanguage(t *testing.T) {
	svc := &mockI18nService{modifyResult: &I18nModifyResult{Item: homeInfo()}}

	out, err := executeWithRoot(t, NewI18nCmd(svc), "i18n", "set", "HOME", "de-ch", "Startsiite")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.lang != "de-CH" || svc.label != "Startsiite" || !svc.apply {
		t.Errorf("service got lang=%q label=%q apply=%v", svc.lang, svc.label, svc.apply)
	}
	if out != "Set HOME de-CH = \"Startsiite\"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestI18nSetCmd_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid language", []string{"HOME", "not a tag", "x"}, "invalid language"},
		{"empty label", []string{"HOME", "de", ""}, "label must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockI18nService{modifyResult: &I18nModifyResult{Item: homeInfo()}}

			_, err := executeWithRoot(t, NewI18nCmd(svc), append([]string{"i18n", "set"}, tt.args...)...)

			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
			if svc.called != "" {
				t.Errorf("service should not be called, got %s", svc.called)
			}
		})
	}
}

func TestI18nRemoveCmd(t *testing.T) {
	svc := &mockI18nService{modifyResult: &I18nModifyResult{Item: homeInfo(), Translations: map[string]string{}}}

	out, err := executeWithRoot(t, NewI18nCmd(svc), "i18n", "remove", "HOME", "DE")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.called != "remove" || svc.lang != "de" {
		t.Errorf("service got %s lang=%q", svc.called, svc.lang)
	}
	if out != "Removed HOME de\n" {
		t.Errorf("output = %q", out)
	}
}

func TestI18nSetCmd_JSONOutput(t *testing.T) {
	svc := &mockI18nService{modifyResult: &I18nModifyResult{
		Item:         homeInfo(),
		Lang:         "fr",
		Label:        "Accueil",
		Translations: map[string]string{"fr": "Accueil"},
	}}

	out, err := executeWithRoot(t, NewI18nCmd(svc), "--json", "i18n", "set", "HOME", "fr", "Accueil")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got I18nModifyResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\nraw: %s", err, out)
	}
	if got.Translations["fr"] != "Accueil" || got.Planned {
		t.Errorf("result = %+v", got)
	}
}
