package tasks_tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"taskbridge/internal/instrumentation"
	"taskbridge/internal/server"
	"taskbridge/internal/taskstore"
	"taskbridge/internal/tools/common"
)

// operations maps each tool name to the task store operation it performs.
// Used as the metrics and audit label for the invocation.
var operations = map[string]string{
	ToolAddTask:    instrumentation.OperationCreate,
	ToolListTasks:  instrumentation.OperationList,
	ToolUpdateTask: instrumentation.OperationUpdate,
	ToolDeleteTask: instrumentation.OperationDelete,
}

// RegisterTaskTools registers all task tools with the MCP server.
// Every tool shares one dispatcher; the handler reads the tool name from
// the request at call time rather than baking it into the closure.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, tool := range Catalog() {
		operation, ok := operations[tool.Name]
		if !ok {
			return fmt.Errorf("no store operation mapped for tool %s", tool.Name)
		}

		s.AddTool(tool, common.InstrumentedToolHandler(tool.Name, operation, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return Dispatch(ctx, sc.Store(), request.Params.Name, request.GetArguments()), nil
			}))
	}
	return nil
}

// Dispatch resolves a tool name against the four known operations, executes
// the matching task store call, and normalizes the outcome into a result
// envelope. It is the single error boundary for tool execution: every
// failure underneath it (unknown tool, transport error, malformed response
// body) comes back as an error-flagged envelope whose text is prefixed
// "Error: ", so a failed invocation never takes down the serving session.
func Dispatch(ctx context.Context, store server.TaskStore, name string, args map[string]interface{}) *mcp.CallToolResult {
	if args == nil {
		args = map[string]interface{}{}
	}

	text, err := dispatch(ctx, store, name, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %s", err))
	}
	return mcp.NewToolResultText(text)
}

func dispatch(ctx context.Context, store server.TaskStore, name string, args map[string]interface{}) (string, error) {
	if store == nil {
		return "", fmt.Errorf("task store not configured")
	}

	switch name {
	case ToolAddTask:
		return handleAddTask(ctx, store, args)
	case ToolListTasks:
		return handleListTasks(ctx, store, args)
	case ToolUpdateTask:
		return handleUpdateTask(ctx, store, args)
	case ToolDeleteTask:
		return handleDeleteTask(ctx, store, args)
	default:
		// Capitalized on purpose: the message is caller-facing envelope
		// text, not a wrapped Go error.
		return "", fmt.Errorf("Unknown tool: %s", name)
	}
}

// handleAddTask creates a task from the name and description arguments.
// Only the two known keys are copied into the create body; each is
// forwarded as-is when present and omitted entirely when absent, so the
// store sees exactly what the caller sent (including a missing required
// name, which the store rejects with its own message).
func handleAddTask(ctx context.Context, store server.TaskStore, args map[string]interface{}) (string, error) {
	fields := taskstore.TaskFields{}
	if name, ok := args["name"]; ok {
		fields["name"] = name
	}
	if description, ok := args["description"]; ok {
		fields["description"] = description
	}

	raw, err := store.CreateTask(ctx, fields)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw)
}

// handleListTasks lists tasks with whichever of filter, sort and page the
// caller supplied. Filter and sort are opaque store expressions passed
// through verbatim; page arrives as a JSON number and is sent in its
// decimal string form.
func handleListTasks(ctx context.Context, store server.TaskStore, args map[string]interface{}) (string, error) {
	query := taskstore.ListQuery{}
	if filter, ok := args["filter"].(string); ok {
		query.Filter = filter
	}
	if sort, ok := args["sort"].(string); ok {
		query.Sort = sort
	}
	if page, ok := args["page"].(float64); ok {
		query.Page = strconv.FormatFloat(page, 'f', -1, 64)
	}

	raw, err := store.ListTasks(ctx, query)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw)
}

// handleUpdateTask patches the task identified by task_id with every other
// argument, forwarded verbatim. Unrecognized fields are not rejected here;
// whether to ignore or refuse them is the store's call.
func handleUpdateTask(ctx context.Context, store server.TaskStore, args map[string]interface{}) (string, error) {
	taskID, _ := args["task_id"].(string)

	fields := taskstore.TaskFields{}
	for key, value := range args {
		if key == "task_id" {
			continue
		}
		fields[key] = value
	}

	raw, err := store.UpdateTask(ctx, taskID, fields)
	if err != nil {
		return "", err
	}
	return prettyJSON(raw)
}

// handleDeleteTask deletes the task identified by task_id. Only the
// transport-level success of the response is consulted; the body is never
// read. Both outcomes are ordinary text envelopes, so deleting a task that
// is already gone reports failure without raising an error.
func handleDeleteTask(ctx context.Context, store server.TaskStore, args map[string]interface{}) (string, error) {
	taskID, _ := args["task_id"].(string)

	ok, err := store.DeleteTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("Failed to delete task %s", taskID), nil
	}
	return fmt.Sprintf("Task %s deleted successfully", taskID), nil
}

// prettyJSON re-indents a raw JSON document for display. Indenting instead
// of unmarshalling keeps the store's response byte-faithful apart from
// whitespace: key order, number formatting and unknown fields all survive.
func prettyJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("task store returned invalid JSON: %w", err)
	}
	return buf.String(), nil
}
