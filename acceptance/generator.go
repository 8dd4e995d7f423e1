// Package acceptance turns plain-text acceptance scenarios into Go test stubs
// for the generated-acceptance-tests package.
package acceptance

import (
	"bufio"
	"bytes"
	"fmt"
	"go/format"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

// Step is a single GIVEN/WHEN/THEN/AND line of a scenario.
type Step struct {
	Keyword string
	Text    string
	Line    int
}

// Scenario is one described acceptance case.
type Scenario struct {
	Description string
	Steps       []Step
	Line        int
}

// Feature is the parsed content of one scenario file.
type Feature struct {
	SourceFile string
	Scenarios  []Scenario
}

var stepKeywords = []string{"GIVEN", "WHEN", "THEN", "AND"}

// ParseFeature reads a scenario file. Each scenario starts with a
// "SCENARIO:" line; keyword lines that follow become its steps. Blank
// lines and lines starting with "#" are ignored.
func ParseFeature(source string, r io.Reader) (*Feature, error) {
	feature := &Feature{SourceFile: source}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if desc, ok := strings.CutPrefix(text, "SCENARIO:"); ok {
			feature.Scenarios = append(feature.Scenarios, Scenario{Description: strings.TrimSpace(desc), Line: line})
			continue
		}
		keyword, rest, ok := splitKeyword(text)
		if !ok {
			return nil, fmt.Errorf("%s:%d: unrecognized line %q", source, line, text)
		}
		if len(feature.Scenarios) == 0 {
			return nil, fmt.Errorf("%s:%d: %s step outside a scenario", source, line, keyword)
		}
		sc := &feature.Scenarios[len(feature.Scenarios)-1]
		sc.Steps = append(sc.Steps, Step{Keyword: keyword, Text: rest, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return feature, nil
}

func splitKeyword(text string) (string, string, bool) {
	for _, kw := range stepKeywords {
		if rest, ok := strings.CutPrefix(text, kw); ok && (rest == "" || rest[0] == ' ' || rest[0] == ':') {
			return kw, strings.TrimSpace(strings.TrimPrefix(rest, ":")), true
		}
	}
	return "", "", false
}

// GenerateTests renders gofmt-formatted Go source with one failing test
// stub per scenario.
func GenerateTests(feature *Feature) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated from %s by the acceptance generator. DO NOT EDIT.\n\n", feature.SourceFile)
	buf.WriteString("package acceptance_test\n")
	if len(feature.Scenarios) > 0 {
		buf.WriteString("\nimport \"testing\"\n")
	}

	prefix := identifier(strings.TrimSuffix(filepath.Base(feature.SourceFile), filepath.Ext(feature.SourceFile)))
	seen := make(map[string]bool)
	for _, sc := range feature.Scenarios {
		name := "Test" + prefix + "_" + identifier(sc.Description)
		if seen[name] {
			name = fmt.Sprintf("%s_L%d", name, sc.Line)
		}
		seen[name] = true

		fmt.Fprintf(&buf, "\n// %s\n// %s:%d\n", sc.Description, feature.SourceFile, sc.Line)
		fmt.Fprintf(&buf, "func %s(t *testing.T) {\n", name)
		for _, st := range sc.Steps {
			fmt.Fprintf(&buf, "\t// %s %s\n", st.Keyword, st.Text)
		}
		fmt.Fprintf(&buf, "\tt.Fatal(%q)\n}\n", "acceptance test not implemented: "+sc.Description)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("formatting generated tests: %w", err)
	}
	return string(src), nil
}

// identifier camel-cases the letters and digits of s.
func identifier(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if r > unicode.MaxASCII {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Scenario"
	}
	return b.String()
}
