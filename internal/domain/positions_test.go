package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestCalculateNewNodesPositions(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	tests := []struct {
		name      string
		oldParent string
		newParent string
		want      []NodePosition
	}{
		{
			name:      "same non-root parent emitted once",
			oldParent: "2",
			newParent: "2",
			want:      []NodePosition{{ID: "21", Position: 0}, {ID: "22", Position: 1}},
		},
		{
			name:      "root to root emitted once",
			oldParent: "",
			newParent: "",
			want:      []NodePosition{{ID: "1", Position: 0}, {ID: "2", Position: 1}},
		},
		{
			name:      "old parent first",
			oldParent: "2",
			newParent: "",
			want: []NodePosition{
				{ID: "21", Position: 0}, {ID: "22", Position: 1},
				{ID: "1", Position: 0}, {ID: "2", Position: 1},
			},
		},
		{
			name:      "root old parent then new",
			oldParent: "",
			newParent: "2",
			want: []NodePosition{
				{ID: "1", Position: 0}, {ID: "2", Position: 1},
				{ID: "21", Position: 0}, {ID: "22", Position: 1},
			},
		},
		{
			name:      "leaf parent yields nothing for its side",
			oldParent: "1",
			newParent: "1",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNewNodesPositions(tt.oldParent, tt.newParent, tree)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("positions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateNewNodesPositions_UnknownParent(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	for _, pair := range [][2]string{{"missing", ""}, {"", "missing"}, {"2", "missing"}} {
		got, err := CalculateNewNodesPositions(pair[0], pair[1], tree)
		if !errors.Is(err, ErrParentNotFound) {
			t.Errorf("(%q,%q) error = %v, want ErrParentNotFound", pair[0], pair[1], err)
		}
		if got != nil {
			t.Errorf("(%q,%q) positions = %v, want nil", pair[0], pair[1], got)
		}
	}
}

func TestCalculateNewNodesPositions_DoesNotMutate(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())
	before := FlattenTree(tree)

	if _, err := CalculateNewNodesPositions("2", "", tree); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(FlattenTree(tree), before) {
		t.Error("tree was modified")
	}
}

func TestMoveNode_BetweenParents(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	tree, oldParent, err := MoveNode(tree, "21", "", 0)
	if err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	if oldParent != "2" {
		t.Errorf("oldParent = %q, want 2", oldParent)
	}
	if got := nodeKeys(tree); !reflect.DeepEqual(got, []string{"21", "1", "2"}) {
		t.Errorf("root = %v, want [21 1 2]", got)
	}
	if got := FindNodeByKey(tree, "21").Data.ParentItemID; got != "" {
		t.Errorf("moved ParentItemID = %q, want empty", got)
	}

	positions, err := CalculateNewNodesPositions(oldParent, "", tree)
	if err != nil {
		t.Fatal(err)
	}
	want := []NodePosition{
		{ID: "22", Position: 0},
		{ID: "21", Position: 0}, {ID: "1", Position: 1}, {ID: "2", Position: 2},
	}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("positions = %v, want %v", positions, want)
	}
}

func TestMoveNode_LastChildMakesParentLeaf(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	tree, _, _ = MoveNode(tree, "21", "1", 0)
	tree, _, err := MoveNode(tree, "22", "1", 99)
	if err != nil {
		t.Fatal(err)
	}

	admin := FindNodeByKey(tree, "2")
	if !admin.Leaf || admin.StyleClass != StyleClassLeaf {
		t.Errorf("admin should now be a leaf, got leaf=%v style=%q", admin.Leaf, admin.StyleClass)
	}
	home := FindNodeByKey(tree, "1")
	if home.Leaf || home.StyleClass != StyleClassParent {
		t.Errorf("home should now be a parent")
	}
	if got := nodeKeys(home.Children); !reflect.DeepEqual(got, []string{"21", "22"}) {
		t.Errorf("home children = %v, want [21 22]", got)
	}
}

func TestMoveNode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		newParent string
		wantErr   error
	}{
		{"unknown node", "missing", "", ErrNodeNotFound},
		{"unknown parent", "1", "missing", ErrParentNotFound},
		{"into itself", "2", "2", ErrCycleDetected},
		{"into descendant", "2", "21", ErrCycleDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := MapToTreeNodes(sampleRecords())
			before := FlattenTree(tree)

			got, _, err := MoveNode(tree, tt.key, tt.newParent, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(FlattenTree(got), before) {
				t.Error("tree changed on error")
			}
		})
	}
}

func TestRemoveNode(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	tree, removed, parent, err := RemoveNode(tree, "22")
	if err != nil {
		t.Fatal(err)
	}
	if removed.Key != "22" || parent != "2" {
		t.Errorf("removed=%s parent=%s, want 22 under 2", removed.Key, parent)
	}
	if FindNodeByKey(tree, "22") != nil {
		t.Error("node still present")
	}

	if _, _, _, err := RemoveNode(tree, "22"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second remove error = %v, want ErrNodeNotFound", err)
	}
}

func TestSiblingIndex(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	tests := []struct {
		key  string
		want int
	}{
		{"1", 0},
		{"2", 1},
		{"22", 1},
		{"missing", -1},
	}
	for _, tt := range tests {
		if got := SiblingIndex(tree, tt.key); got != tt.want {
			t.Errorf("SiblingIndex(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestPositionUpdates(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())
	positions := []NodePosition{{ID: "22", Position: 0}, {ID: "1", Position: 3}, {ID: "ghost", Position: 1}}

	got := PositionUpdates(tree, positions)

	want := []PositionUpdate{
		{ID: "22", Position: 0, ParentItemID: "2"},
		{ID: "1", Position: 3},
		{ID: "ghost", Position: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PositionUpdates = %+v, want %+v", got, want)
	}

	ApplyPositions(tree, positions)
	if FindNodeByKey(tree, "1").Data.Position != 3 {
		t.Error("ApplyPositions did not update node data")
	}
}

func TestCompactPositions(t *testing.T) {
	items := []MenuItemRecord{
		{ID: "a", Position: 10, Children: []MenuItemRecord{
			{ID: "a1", Position: 5},
			{ID: "a2", Position: 1},
		}},
		{ID: "b", Position: 3},
	}

	got := CompactPositions(items)

	want := []PositionUpdate{
		{ID: "b", Position: 0},
		{ID: "a", Position: 1},
		{ID: "a2", Position: 0, ParentItemID: "a"},
		{ID: "a1", Position: 1, ParentItemID: "a"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompactPositions = %+v, want %+v", got, want)
	}

	if len(CompactPositions([]MenuItemRecord{{ID: "x", Position: 0}})) != 0 {
		t.Error("already compact menu should yield no updates")
	}
}

func TestParentKey(t *testing.T) {
	tree := MapToTreeNodes(sampleRecords())

	for key, want := range map[string]string{"21": "2", "2": "", "missing": ""} {
		if got := ParentKey(tree, key); got != want {
			t.Errorf("ParentKey(%q) = %q, want %q", key, got, want)
		}
	}
}
