package acceptance_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runWsm executes the wsm binary and returns stdout, stderr, and exit code.
func runWsm(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(wsmBinary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run wsm: %v", err)
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

// runWsmSuccess runs wsm expecting exit code 0 and returns stdout.
func runWsmSuccess(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, exitCode := runWsm(t, dir, args...)
	if exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\nargs: %v\nstdout: %s\nstderr: %s", exitCode, args, stdout, stderr)
	}
	return stdout
}

// initProject creates a temp dir and initializes a wsm project.
func initProject(t *testing.T, extraArgs ...string) string {
	t.Helper()
	dir := t.TempDir()
	runWsmSuccess(t, dir, append([]string{"init"}, extraArgs...)...)
	return dir
}

// importMenu writes content to menu.yaml in dir and imports it.
func importMenu(t *testing.T, dir, content string) {
	t.Helper()
	writeFile(t, dir, "menu.yaml", content)
	runWsmSuccess(t, dir, "import", "menu.yaml")
}

// runJSON runs wsm with --json and decodes stdout.
func runJSON(t *testing.T, dir string, args ...string) map[string]interface{} {
	t.Helper()
	stdout := runWsmSuccess(t, dir, append([]string{"--json"}, args...)...)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nargs: %v\noutput: %s", err, args, stdout)
	}
	return result
}

// listJSON runs wsm list --json and parses the result.
func listJSON(t *testing.T, dir string, extraArgs ...string) map[string]interface{} {
	t.Helper()
	return runJSON(t, dir, append([]string{"list"}, extraArgs...)...)
}

// flattenNodes recursively collects all tree nodes from a list --json
// result into a flat slice, parents before children.
func flattenNodes(nodes []interface{}) []map[string]interface{} {
	var flat []map[string]interface{}
	for _, n := range nodes {
		node := n.(map[string]interface{})
		flat = append(flat, node)
		if children, ok := node["children"].([]interface{}); ok {
			flat = append(flat, flattenNodes(children)...)
		}
	}
	return flat
}

// getNodes extracts the top-level nodes array from a list --json result.
func getNodes(t *testing.T, result map[string]interface{}) []interface{} {
	t.Helper()
	nodes, ok := result["nodes"].([]interface{})
	if !ok {
		t.Fatal("missing nodes in result")
	}
	return nodes
}

// nodeIDs returns the tree keys (item IDs) of nodes in order.
func nodeIDs(nodes []interface{}) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.(map[string]interface{})["key"].(string))
	}
	return ids
}

// findNode returns the node whose item key is key, or nil.
func findNode(nodes []interface{}, key string) map[string]interface{} {
	for _, n := range flattenNodes(nodes) {
		data, _ := n["data"].(map[string]interface{})
		if data["key"] == key {
			return n
		}
	}
	return nil
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// fileExists checks if a file exists.
func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// snapshotWorkspaces returns a map of filename to content for every
// workspace file in the project.
func snapshotWorkspaces(t *testing.T, dir string) map[string]string {
	t.Helper()
	wsDir := filepath.Join(dir, ".wsm", "workspaces")
	entries, err := os.ReadDir(wsDir)
	if err != nil {
		t.Fatalf("failed to read workspaces dir: %v", err)
	}
	snap := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(wsDir, e.Name()))
		if err != nil {
			t.Fatalf("failed to read %s: %v", e.Name(), err)
		}
		snap[e.Name()] = string(content)
	}
	return snap
}

// assertSnapshotUnchanged compares current workspace files against a snapshot.
func assertSnapshotUnchanged(t *testing.T, dir string, snap map[string]string) {
	t.Helper()
	current := snapshotWorkspaces(t, dir)
	if len(current) != len(snap) {
		t.Fatalf("file count changed: had %d, now %d", len(snap), len(current))
	}
	for name, oldContent := range snap {
		newContent, ok := current[name]
		if !ok {
			t.Fatalf("file %s disappeared", name)
		}
		if newContent != oldContent {
			t.Fatalf("file %s content changed", name)
		}
	}
}
