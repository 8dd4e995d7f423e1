package domain

import (
	"reflect"
	"testing"
)

func sampleRecords() []MenuItemRecord {
	return []MenuItemRecord{
		{ID: "2", Key: "ADMIN", Name: "Admin", Position: 1, Children: []MenuItemRecord{
			{ID: "22", Key: "ADMIN_ROLES", Name: "Roles", Position: 1},
			{ID: "21", Key: "ADMIN_USERS", Name: "Users", Position: 0},
		}},
		{ID: "1", Key: "HOME", Name: "Home", Position: 0, URL: "/"},
	}
}

func nodeKeys(nodes []*TreeNode) []string {
	keys := make([]string, 0, len(nodes))
	for _, n := range nodes {
		keys = append(keys, n.Key)
	}
	return keys
}

func TestMapToTreeNodes_Empty(t *testing.T) {
	got := MapToTreeNodes(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("MapToTreeNodes(nil) = %v, want empty non-nil slice", got)
	}
}

func TestMapToTreeNodes_Structure(t *testing.T) {
	nodes := MapToTreeNodes(sampleRecords())

	if got := nodeKeys(nodes); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("root keys = %v, want [1 2]", got)
	}

	home, admin := nodes[0], nodes[1]
	if !home.Leaf || home.StyleClass != StyleClassLeaf {
		t.Errorf("home leaf=%v style=%q, want leaf", home.Leaf, home.StyleClass)
	}
	if admin.Leaf || admin.StyleClass != StyleClassParent {
		t.Errorf("admin leaf=%v style=%q, want parent", admin.Leaf, admin.StyleClass)
	}
	if got := nodeKeys(admin.Children); !reflect.DeepEqual(got, []string{"21", "22"}) {
		t.Errorf("admin children = %v, want [21 22]", got)
	}
	if admin.Label != "Admin" {
		t.Errorf("Label = %q, want Admin", admin.Label)
	}
	if admin.Data.Children != nil {
		t.Error("Data should not carry children")
	}
	if admin.Children[0].Data.ParentItemID != "2" {
		t.Errorf("child ParentItemID = %q, want 2", admin.Children[0].Data.ParentItemID)
	}
	for _, n := range []*TreeNode{home, admin, admin.Children[0]} {
		if n.Expanded {
			t.Errorf("node %s expanded, want collapsed", n.Key)
		}
	}
}

func TestMapToTreeNodes_EqualPositionsKeepInputOrder(t *testing.T) {
	items := []MenuItemRecord{
		{ID: "x", Position: 1},
		{ID: "y", Position: 1},
		{ID: "z", Position: 0},
	}

	got := nodeKeys(MapToTreeNodes(items))

	if want := []string{"z", "x", "y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestFindNodeByKey(t *testing.T) {
	nodes := MapToTreeNodes(sampleRecords())

	tests := []struct {
		key  string
		want bool
	}{
		{"1", true},
		{"22", true},
		{"missing", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := FindNodeByKey(nodes, tt.key)
			if (got != nil) != tt.want {
				t.Fatalf("FindNodeByKey(%q) = %v, want found=%v", tt.key, got, tt.want)
			}
			if got != nil && got.Key != tt.key {
				t.Errorf("Key = %q, want %q", got.Key, tt.key)
			}
		})
	}
}

func TestFindNodeByKey_FirstInDepthFirstOrder(t *testing.T) {
	nodes := []*TreeNode{
		{Key: "a", Label: "outer", Children: []*TreeNode{{Key: "dup", Label: "nested"}}},
		{Key: "dup", Label: "sibling"},
	}

	got := FindNodeByKey(nodes, "dup")

	if got == nil || got.Label != "nested" {
		t.Errorf("got %+v, want the nested node", got)
	}
}

func TestFlattenTree_RoundTrip(t *testing.T) {
	records := sampleRecords()

	fromTree := FlattenTree(MapToTreeNodes(records))
	nested, findings := NestRecords(fromTree)

	if len(findings) != 0 {
		t.Fatalf("unexpected findings: %v", findings)
	}
	back := FlattenTree(MapToTreeNodes(nested))
	if !reflect.DeepEqual(back, fromTree) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", back, fromTree)
	}

	var ids []string
	for _, r := range fromTree {
		ids = append(ids, r.ID)
	}
	if want := []string{"1", "2", "21", "22"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("flatten order = %v, want %v", ids, want)
	}
}

func TestExpansionState_ToggleAndApply(t *testing.T) {
	nodes := MapToTreeNodes(sampleRecords())
	state := NewExpansionState()

	if !state.Toggle("2") {
		t.Error("first Toggle should expand")
	}
	state.Apply(nodes)
	if !FindNodeByKey(nodes, "2").Expanded {
		t.Error("node 2 should be expanded after Apply")
	}

	if state.Toggle("2") {
		t.Error("second Toggle should collapse")
	}

	// A reload produces fresh collapsed nodes; the state restores them.
	state.Expand("2")
	reloaded := MapToTreeNodes(sampleRecords())
	state.Apply(reloaded)
	if !FindNodeByKey(reloaded, "2").Expanded {
		t.Error("expansion lost across reload")
	}
	if FindNodeByKey(reloaded, "1").Expanded {
		t.Error("node 1 should stay collapsed")
	}
}

func TestExpansionState_ExpandAllCollapseAll(t *testing.T) {
	nodes := MapToTreeNodes(sampleRecords())
	state := NewExpansionState()

	state.ExpandAll(nodes)
	if got, want := state.Keys(), []string{"1", "2", "21", "22"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	state.Collapse("21")
	if state.IsExpanded("21") {
		t.Error("21 should be collapsed")
	}

	state.CollapseAll()
	if len(state.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none", state.Keys())
	}
}

func TestExpansionState_NilIsCollapsed(t *testing.T) {
	var state *ExpansionState
	if state.IsExpanded("x") {
		t.Error("nil state should report collapsed")
	}
	if state.Keys() != nil {
		t.Error("nil state should have no keys")
	}
}
