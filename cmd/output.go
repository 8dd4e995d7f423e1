package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON encodes v as JSON to w, handling I/O errors at the boundary.
func writeJSON(w io.Writer, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
	}
}

// textNode is one line of a rendered tree.
type textNode struct {
	Text     string
	Children []textNode
}

// renderTreeText writes header followed by roots drawn with box-drawing
// connectors.
func renderTreeText(w io.Writer, header string, roots []textNode) {
	fmt.Fprintln(w, header)
	renderChildren(w, roots, "")
}

// renderChildren recursively renders child nodes with tree-drawing prefixes.
func renderChildren(w io.Writer, children []textNode, prefix string) {
	for i, child := range children {
		isLast := i == len(children)-1
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, child.Text)

		childPrefix := prefix + "│   "
		if isLast {
			childPrefix = prefix + "    "
		}
		renderChildren(w, child.Children, childPrefix)
	}
}
