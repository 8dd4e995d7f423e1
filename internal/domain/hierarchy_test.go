package domain

import (
	"errors"
	"reflect"
	"testing"
)

func findingTypes(findings []Finding) []string {
	var types []string
	for _, f := range findings {
		types = append(types, f.Type)
	}
	return types
}

func TestFlattenRecords_SetsParentFromNesting(t *testing.T) {
	flat := FlattenRecords(sampleRecords())

	var got [][2]string
	for _, r := range flat {
		if r.Children != nil {
			t.Errorf("record %s still has children", r.ID)
		}
		got = append(got, [2]string{r.ID, r.ParentItemID})
	}
	want := [][2]string{{"2", ""}, {"22", "2"}, {"21", "2"}, {"1", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlattenRecords = %v, want %v", got, want)
	}
}

func TestNestRecords_RebuildsHierarchy(t *testing.T) {
	flat := []MenuItemRecord{
		{ID: "c", ParentItemID: "a"},
		{ID: "a"},
		{ID: "b"},
		{ID: "d", ParentItemID: "c"},
	}

	nested, findings := NestRecords(flat)

	if len(findings) != 0 {
		t.Fatalf("unexpected findings: %v", findings)
	}
	if len(nested) != 2 || nested[0].ID != "a" || nested[1].ID != "b" {
		t.Fatalf("roots = %+v, want a, b", nested)
	}
	if len(nested[0].Children) != 1 || nested[0].Children[0].ID != "c" {
		t.Fatalf("a children = %+v, want c", nested[0].Children)
	}
	if nested[0].Children[0].Children[0].ID != "d" {
		t.Errorf("c children = %+v, want d", nested[0].Children[0].Children)
	}
}

func TestNestRecords_OrphanAttachedAtRoot(t *testing.T) {
	flat := []MenuItemRecord{
		{ID: "a"},
		{ID: "lost", ParentItemID: "ghost"},
	}

	nested, findings := NestRecords(flat)

	if got := findingTypes(findings); !reflect.DeepEqual(got, []string{FindingOrphanedParent}) {
		t.Fatalf("findings = %v, want orphaned_parent", got)
	}
	if len(nested) != 2 || nested[1].ID != "lost" || nested[1].ParentItemID != "" {
		t.Errorf("orphan not moved to root: %+v", nested)
	}
}

func TestNestRecords_CycleBroken(t *testing.T) {
	flat := []MenuItemRecord{
		{ID: "a", ParentItemID: "b"},
		{ID: "b", ParentItemID: "a"},
	}

	nested, findings := NestRecords(flat)

	if got := findingTypes(findings); !reflect.DeepEqual(got, []string{FindingParentCycle}) {
		t.Fatalf("findings = %v, want one parent_cycle", got)
	}
	if len(FlattenRecords(nested)) != 2 {
		t.Errorf("records lost while breaking cycle: %+v", nested)
	}
	if len(nested) != 1 || nested[0].ID != "a" || nested[0].Children[0].ID != "b" {
		t.Errorf("nested = %+v, want a > b", nested)
	}
}

func TestNestRecords_SelfParent(t *testing.T) {
	nested, findings := NestRecords([]MenuItemRecord{{ID: "a", ParentItemID: "a"}})

	if got := findingTypes(findings); !reflect.DeepEqual(got, []string{FindingParentCycle}) {
		t.Fatalf("findings = %v, want parent_cycle", got)
	}
	if len(nested) != 1 || nested[0].ParentItemID != "" {
		t.Errorf("nested = %+v", nested)
	}
}

func TestNestRecords_DuplicateID(t *testing.T) {
	flat := []MenuItemRecord{
		{ID: "a", Name: "first"},
		{ID: "a", Name: "second"},
		{ID: "c", ParentItemID: "a"},
	}

	nested, findings := NestRecords(flat)

	if got := findingTypes(findings); !reflect.DeepEqual(got, []string{FindingDuplicateID}) {
		t.Fatalf("findings = %v, want duplicate_id", got)
	}
	if nested[0].Name != "first" || len(nested[0].Children) != 1 {
		t.Errorf("children should attach to the first record: %+v", nested)
	}
}

func TestCheckHierarchy(t *testing.T) {
	items := []MenuItemRecord{
		{ID: "1", Key: "HOME", Name: "Home"},
		{ID: "2", Key: "HOME", Name: "Home again"},
		{ID: "3", Key: "NONAME"},
		{ID: "4", Key: "EXT", Name: "Ext", External: true, URL: "not a url"},
		{ID: "5", Key: "EXT_OK", Name: "Ext", External: true, URL: "https://x.test"},
		{ID: "6", Key: "EXT_VAR", Name: "Ext", External: true, URL: "[[HOST]]/x"},
	}

	got := findingTypes(CheckHierarchy(items))

	want := []string{FindingDuplicateKey, FindingMissingName, FindingInvalidURL}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CheckHierarchy types = %v, want %v", got, want)
	}
}

func TestCheckHierarchy_Clean(t *testing.T) {
	if got := CheckHierarchy(sampleRecords()); len(got) != 0 {
		t.Errorf("CheckHierarchy = %v, want none", got)
	}
}

func TestValidateHierarchy(t *testing.T) {
	tests := []struct {
		name    string
		items   []MenuItemRecord
		wantErr bool
	}{
		{"clean", sampleRecords(), false},
		{"warning only", []MenuItemRecord{{ID: "1", Key: "A"}}, false},
		{"duplicate key", []MenuItemRecord{{ID: "1", Key: "A", Name: "a"}, {ID: "2", Key: "A", Name: "b"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHierarchy(tt.items)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateHierarchy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidHierarchy) {
				t.Errorf("error = %v, want ErrInvalidHierarchy", err)
			}
		})
	}
}

func TestEnsureNested(t *testing.T) {
	t.Run("flat list is nested", func(t *testing.T) {
		flat := []MenuItemRecord{{ID: "a"}, {ID: "b", ParentItemID: "a"}}
		got := EnsureNested(flat)
		if len(got) != 1 || len(got[0].Children) != 1 || got[0].Children[0].ID != "b" {
			t.Errorf("EnsureNested() = %+v", got)
		}
	})

	t.Run("nested list unchanged", func(t *testing.T) {
		nested := sampleRecords()
		got := EnsureNested(nested)
		if !reflect.DeepEqual(got, nested) {
			t.Errorf("EnsureNested() changed nested input")
		}
	})

	t.Run("top level with external parent ids unchanged", func(t *testing.T) {
		items := []MenuItemRecord{{ID: "a", ParentItemID: "outside"}}
		got := EnsureNested(items)
		if !reflect.DeepEqual(got, items) {
			t.Errorf("EnsureNested() = %+v", got)
		}
	})
}
