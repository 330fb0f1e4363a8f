package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskbridge/internal/tools/tasks_tools"
)

func TestGenerateToolsMarkdown(t *testing.T) {
	markdown := generateToolsMarkdown(tasks_tools.Catalog())

	// Tools appear in catalog order.
	order := []string{"### add_task", "### list_tasks", "### update_task", "### delete_task"}
	last := -1
	for _, heading := range order {
		idx := strings.Index(markdown, heading)
		if idx < 0 {
			t.Fatalf("expected %q in generated markdown", heading)
		}
		if idx < last {
			t.Errorf("%q appears out of catalog order", heading)
		}
		last = idx
	}

	if !strings.Contains(markdown, "# MCP Tools Reference") {
		t.Error("expected the reference header")
	}
	if !strings.Contains(markdown, "- `name` (required): ") {
		t.Error("expected add_task's name parameter to be marked required")
	}
	if !strings.Contains(markdown, "- `task_id` (required): ") {
		t.Error("expected task_id parameters to be marked required")
	}
	if !strings.Contains(markdown, "- `filter` (optional): ") {
		t.Error("expected list_tasks's filter parameter to be marked optional")
	}
}

func TestRunGenerateDocsWritesFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "TOOLS.md")

	if err := runGenerateDocs(outputFile); err != nil {
		t.Fatalf("runGenerateDocs() error = %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	if !strings.Contains(string(data), "# MCP Tools Reference") {
		t.Error("expected the generated reference in the output file")
	}
}

func TestGetPropertyType(t *testing.T) {
	tests := []struct {
		name string
		prop map[string]interface{}
		want string
	}{
		{
			name: "string type",
			prop: map[string]interface{}{"type": "string"},
			want: "string",
		},
		{
			name: "boolean type",
			prop: map[string]interface{}{"type": "boolean"},
			want: "boolean",
		},
		{
			name: "missing type",
			prop: map[string]interface{}{"description": "no type"},
			want: "any",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPropertyType(tt.prop); got != tt.want {
				t.Errorf("getPropertyType() = %q, want %q", got, tt.want)
			}
		})
	}
}
