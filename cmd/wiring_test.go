package cmd

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestBuildCommandTree_RegistersCommands(t *testing.T) {
	root := BuildCommandTree(nil, nil)

	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	want := []string{
		"add", "check", "compact", "delete", "doctor", "i18n", "import", "init",
		"list", "match", "move", "rename", "resolve", "serve", "update",
	}
	for _, name := range want {
		if !slices.Contains(got, name) {
			t.Errorf("command %q not registered; have %v", name, got)
		}
	}
}

func TestBuildCommandTree_I18nSubcommands(t *testing.T) {
	root := BuildCommandTree(nil, nil)

	i18n, _, err := root.Find([]string{"i18n"})
	if err != nil {
		t.Fatalf("Find(i18n): %v", err)
	}
	for _, name := range []string{"list", "set", "remove"} {
		if _, _, err := i18n.Find([]string{name}); err != nil {
			t.Errorf("i18n %s not registered: %v", name, err)
		}
	}
}

func TestBuildCommandTree_WithoutServiceRequiresProject(t *testing.T) {
	tests := [][]string{
		{"list"},
		{"resolve"},
		{"match", "/admin"},
		{"move", "ADMIN", "--to", "root"},
		{"add", "Reports"},
		{"update", "ADMIN", "--name", "Admin"},
		{"rename", "ADMIN", "Admin"},
		{"i18n", "list", "ADMIN"},
		{"delete", "ADMIN"},
		{"check"},
		{"doctor"},
		{"doctor", "--apply"},
		{"compact"},
		{"import", "menu.yaml"},
		{"serve"},
	}

	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			root := BuildCommandTree(nil, nil)
			root.SetArgs(args)

			err := root.ExecuteContext(context.Background())

			if !errors.Is(err, ErrNotInProject) {
				t.Errorf("error = %v, want ErrNotInProject", err)
			}
		})
	}
}

func TestBuildCommandTree_ServiceWithoutAppSkipsProjectCommands(t *testing.T) {
	root := BuildCommandTree(&fakeService{}, nil)
	root.SetArgs([]string{"import", "menu.yaml"})

	err := root.ExecuteContext(context.Background())

	if !errors.Is(err, ErrNotInProject) {
		t.Errorf("error = %v, want ErrNotInProject", err)
	}
}
