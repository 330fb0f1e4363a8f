package tasks_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"taskbridge/internal/server"
	"taskbridge/internal/taskstore"
)

// fakeStore implements server.TaskStore with canned responses, recording
// the arguments of the last call per operation.
type fakeStore struct {
	createFields taskstore.TaskFields
	createRaw    string
	createErr    error

	listQuery taskstore.ListQuery
	listRaw   string
	listErr   error

	updateID     string
	updateFields taskstore.TaskFields
	updateRaw    string
	updateErr    error

	deleteID  string
	deleteOK  bool
	deleteErr error

	calls int
}

func (f *fakeStore) CreateTask(ctx context.Context, fields taskstore.TaskFields) (json.RawMessage, error) {
	f.calls++
	f.createFields = fields
	if f.createErr != nil {
		return nil, f.createErr
	}
	return json.RawMessage(f.createRaw), nil
}

func (f *fakeStore) ListTasks(ctx context.Context, query taskstore.ListQuery) (json.RawMessage, error) {
	f.calls++
	f.listQuery = query
	if f.listErr != nil {
		return nil, f.listErr
	}
	return json.RawMessage(f.listRaw), nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, taskID string, fields taskstore.TaskFields) (json.RawMessage, error) {
	f.calls++
	f.updateID = taskID
	f.updateFields = fields
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return json.RawMessage(f.updateRaw), nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	f.calls++
	f.deleteID = taskID
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return f.deleteOK, nil
}

// resultText extracts the single text segment from a result envelope.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil {
		t.Fatal("Expected a result envelope, got nil")
	}
	if len(result.Content) != 1 {
		t.Fatalf("Expected exactly one content segment, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestDispatchUnknownTool(t *testing.T) {
	store := &fakeStore{}

	result := Dispatch(context.Background(), store, "frobnicate", map[string]interface{}{})

	if !result.IsError {
		t.Error("Expected an error envelope for an unknown tool")
	}
	if text := resultText(t, result); text != "Error: Unknown tool: frobnicate" {
		t.Errorf("Expected 'Error: Unknown tool: frobnicate', got %q", text)
	}
	if store.calls != 0 {
		t.Errorf("Expected no store calls for an unknown tool, got %d", store.calls)
	}
}

func TestDispatchAddTask(t *testing.T) {
	store := &fakeStore{createRaw: `{"id":"t1","name":"Buy milk","done":false}`}

	result := Dispatch(context.Background(), store, ToolAddTask, map[string]interface{}{
		"name": "Buy milk",
	})

	if result.IsError {
		t.Fatalf("Expected a success envelope, got error: %s", resultText(t, result))
	}
	if store.calls != 1 {
		t.Errorf("Expected exactly one store call, got %d", store.calls)
	}

	if got := store.createFields["name"]; got != "Buy milk" {
		t.Errorf("Expected name 'Buy milk' in the create body, got %v", got)
	}
	if _, ok := store.createFields["description"]; ok {
		t.Error("Expected description to be absent from the create body")
	}

	want := "{\n  \"id\": \"t1\",\n  \"name\": \"Buy milk\",\n  \"done\": false\n}"
	if text := resultText(t, result); text != want {
		t.Errorf("Expected the pretty-printed store response, got %q", text)
	}
}

func TestDispatchAddTaskCopiesOnlyKnownFields(t *testing.T) {
	store := &fakeStore{createRaw: `{}`}

	result := Dispatch(context.Background(), store, ToolAddTask, map[string]interface{}{
		"name":        "Buy milk",
		"description": "2% if they have it",
		"priority":    float64(5),
	})

	if result.IsError {
		t.Fatalf("Expected a success envelope, got error: %s", resultText(t, result))
	}
	if len(store.createFields) != 2 {
		t.Errorf("Expected exactly name and description in the create body, got %v", store.createFields)
	}
	if got := store.createFields["description"]; got != "2% if they have it" {
		t.Errorf("Expected the description forwarded as-is, got %v", got)
	}
}

func TestDispatchListTasks(t *testing.T) {
	store := &fakeStore{listRaw: `[]`}

	result := Dispatch(context.Background(), store, ToolListTasks, map[string]interface{}{
		"filter": "(done=false)",
		"sort":   "-created",
		"page":   float64(2),
	})

	if result.IsError {
		t.Fatalf("Expected a success envelope, got error: %s", resultText(t, result))
	}

	want := taskstore.ListQuery{Filter: "(done=false)", Sort: "-created", Page: "2"}
	if store.listQuery != want {
		t.Errorf("Expected query %+v, got %+v", want, store.listQuery)
	}
}

func TestDispatchListTasksNoArguments(t *testing.T) {
	store := &fakeStore{listRaw: `[]`}

	result := Dispatch(context.Background(), store, ToolListTasks, nil)

	if result.IsError {
		t.Fatalf("Expected a success envelope, got error: %s", resultText(t, result))
	}
	if !store.listQuery.IsZero() {
		t.Errorf("Expected an empty query when no arguments are supplied, got %+v", store.listQuery)
	}
}

func TestDispatchListTasksPageConversion(t *testing.T) {
	tests := []struct {
		name string
		page float64
		want string
	}{
		{"first page", 1, "1"},
		{"later page", 42, "42"},
		{"fractional page forwarded as-is", 2.5, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{listRaw: `[]`}

			Dispatch(context.Background(), store, ToolListTasks, map[string]interface{}{
				"page": tt.page,
			})

			if store.listQuery.Page != tt.want {
				t.Errorf("Expected page %q, got %q", tt.want, store.listQuery.Page)
			}
		})
	}
}

func TestDispatchUpdateTask(t *testing.T) {
	store := &fakeStore{updateRaw: `{"id":"abc123","done":true}`}

	result := Dispatch(context.Background(), store, ToolUpdateTask, map[string]interface{}{
		"task_id": "abc123",
		"done":    true,
	})

	if result.IsError {
		t.Fatalf("Expected a success envelope, got error: %s", resultText(t, result))
	}
	if store.updateID != "abc123" {
		t.Errorf("Expected update to address task abc123, got %q", store.updateID)
	}
	if len(store.updateFields) != 1 {
		t.Errorf("Expected exactly one field in the update body, got %v", store.updateFields)
	}
	if got := store.updateFields["done"]; got != true {
		t.Errorf("Expected done=true in the update body, got %v", got)
	}
	if _, ok := store.updateFields["task_id"]; ok {
		t.Error("Expected task_id to be excluded from the update body")
	}
}

func TestDispatchUpdateTaskForwardsUnknownFields(t *testing.T) {
	store := &fakeStore{updateRaw: `{}`}

	Dispatch(context.Background(), store, ToolUpdateTask, map[string]interface{}{
		"task_id":  "abc123",
		"name":     "New name",
		"priority": float64(3),
	})

	if got := store.updateFields["name"]; got != "New name" {
		t.Errorf("Expected name forwarded in the update body, got %v", got)
	}
	if got := store.updateFields["priority"]; got != float64(3) {
		t.Errorf("Expected unrecognized fields forwarded verbatim, got %v", got)
	}
}

func TestDispatchDeleteTask(t *testing.T) {
	tests := []struct {
		name     string
		deleted  bool
		wantText string
	}{
		{"store reports success", true, "Task abc123 deleted successfully"},
		{"store reports failure", false, "Failed to delete task abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{deleteOK: tt.deleted}

			result := Dispatch(context.Background(), store, ToolDeleteTask, map[string]interface{}{
				"task_id": "abc123",
			})

			if result.IsError {
				t.Error("Expected a non-error envelope for both delete outcomes")
			}
			if store.deleteID != "abc123" {
				t.Errorf("Expected delete to address task abc123, got %q", store.deleteID)
			}
			if text := resultText(t, result); text != tt.wantText {
				t.Errorf("Expected %q, got %q", tt.wantText, text)
			}
		})
	}
}

func TestDispatchDeleteTaskIdempotent(t *testing.T) {
	var deletes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		deletes++
		if deletes == 1 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"no such task"}`)
	}))
	defer srv.Close()

	store := taskstore.New(srv.URL, srv.Client())
	args := map[string]interface{}{"task_id": "abc123"}

	first := Dispatch(context.Background(), store, ToolDeleteTask, args)
	if first.IsError {
		t.Error("Expected the first delete to be a non-error envelope")
	}
	if text := resultText(t, first); text != "Task abc123 deleted successfully" {
		t.Errorf("Expected the success message, got %q", text)
	}

	second := Dispatch(context.Background(), store, ToolDeleteTask, args)
	if second.IsError {
		t.Error("Expected the second delete to be a non-error envelope")
	}
	if text := resultText(t, second); text != "Failed to delete task abc123" {
		t.Errorf("Expected the failure message, got %q", text)
	}

	if deletes != 2 {
		t.Errorf("Expected two delete requests, got %d", deletes)
	}
}

func TestDispatchForwardsStoreErrorBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"name is required"}`)
	}))
	defer srv.Close()

	store := taskstore.New(srv.URL, srv.Client())

	result := Dispatch(context.Background(), store, ToolAddTask, map[string]interface{}{})

	if result.IsError {
		t.Error("Expected a non-error envelope when the store answers with an error body")
	}
	want := "{\n  \"error\": \"name is required\"\n}"
	if text := resultText(t, result); text != want {
		t.Errorf("Expected the store's error body forwarded as content, got %q", text)
	}
}

func TestDispatchInvalidResponseJSON(t *testing.T) {
	store := &fakeStore{createRaw: `{"id":"t1"`}

	result := Dispatch(context.Background(), store, ToolAddTask, map[string]interface{}{
		"name": "Buy milk",
	})

	if !result.IsError {
		t.Fatal("Expected an error envelope for an invalid JSON response")
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "Error: ") {
		t.Errorf("Expected the 'Error: ' prefix, got %q", text)
	}
}

func TestDispatchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	store := taskstore.New(addr, nil)

	tests := []struct {
		tool string
		args map[string]interface{}
	}{
		{ToolAddTask, map[string]interface{}{"name": "Buy milk"}},
		{ToolListTasks, map[string]interface{}{}},
		{ToolUpdateTask, map[string]interface{}{"task_id": "abc123", "done": true}},
		{ToolDeleteTask, map[string]interface{}{"task_id": "abc123"}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			result := Dispatch(context.Background(), store, tt.tool, tt.args)

			if !result.IsError {
				t.Fatal("Expected an error envelope for a transport failure")
			}
			text := resultText(t, result)
			if !strings.HasPrefix(text, "Error: ") {
				t.Errorf("Expected the 'Error: ' prefix, got %q", text)
			}
			if !strings.Contains(text, "connection refused") {
				t.Errorf("Expected the transport failure message to be relayed, got %q", text)
			}
		})
	}

	// Failed invocations must not poison later ones.
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer live.Close()

	result := Dispatch(context.Background(), taskstore.New(live.URL, live.Client()), ToolListTasks, nil)
	if result.IsError {
		t.Errorf("Expected subsequent invocations to keep working, got error: %s", resultText(t, result))
	}
}

func TestDispatchNilStore(t *testing.T) {
	result := Dispatch(context.Background(), nil, ToolListTasks, nil)

	if !result.IsError {
		t.Fatal("Expected an error envelope when no store is configured")
	}
	if text := resultText(t, result); text != "Error: task store not configured" {
		t.Errorf("Expected a configuration error message, got %q", text)
	}
}

func TestRegisterTaskTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), &fakeStore{listRaw: `[]`})
	defer func() {
		_ = sc.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("taskbridge-test", "0.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	if err := RegisterTaskTools(mcpSrv, sc); err != nil {
		t.Fatalf("RegisterTaskTools() error = %v", err)
	}

	registered := make(map[string]bool)
	for _, serverTool := range mcpSrv.ListTools() {
		registered[serverTool.Tool.Name] = true
	}

	for _, tool := range Catalog() {
		if !registered[tool.Name] {
			t.Errorf("Expected tool %s to be registered", tool.Name)
		}
	}
	if len(registered) != len(Catalog()) {
		t.Errorf("Expected %d registered tools, got %d", len(Catalog()), len(registered))
	}
}
