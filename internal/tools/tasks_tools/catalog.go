package tasks_tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names form a fixed enumeration; the dispatcher only ever resolves
// these four.
const (
	ToolAddTask    = "add_task"
	ToolListTasks  = "list_tasks"
	ToolUpdateTask = "update_task"
	ToolDeleteTask = "delete_task"
)

// Catalog returns the descriptors for the four task tools in a fixed,
// stable order: add_task, list_tasks, update_task, delete_task.
//
// The parameter schemas are discovery metadata only. The dispatcher does
// not validate arguments against them before sending; rejecting a missing
// required field is the task store's job, so its own error messages reach
// the caller instead of a local approximation that could drift from the
// store's actual rules.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		addTaskTool(),
		listTasksTool(),
		updateTaskTool(),
		deleteTaskTool(),
	}
}

func addTaskTool() mcp.Tool {
	return mcp.NewTool(ToolAddTask,
		mcp.WithDescription("Create a new task in the task store"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the task"),
		),
		mcp.WithString("description",
			mcp.Description("Longer description of the task"),
		),
	)
}

func listTasksTool() mcp.Tool {
	return mcp.NewTool(ToolListTasks,
		mcp.WithDescription("List tasks in the task store, with optional filter, sort and pagination"),
		mcp.WithString("filter",
			mcp.Description("Filter expression evaluated by the task store, e.g. \"(done=false)\""),
		),
		mcp.WithString("sort",
			mcp.Description("Sort expression evaluated by the task store, e.g. \"-created\" for newest first"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number to fetch (1-based). Each response is one page; request further pages explicitly."),
		),
	)
}

func updateTaskTool() mcp.Tool {
	return mcp.NewTool(ToolUpdateTask,
		mcp.WithDescription("Update an existing task in the task store"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the task"),
		),
		mcp.WithString("description",
			mcp.Description("New description for the task"),
		),
		mcp.WithBoolean("done",
			mcp.Description("Whether the task is done"),
		),
		mcp.WithBoolean("archived",
			mcp.Description("Whether the task is archived"),
		),
	)
}

func deleteTaskTool() mcp.Tool {
	return mcp.NewTool(ToolDeleteTask,
		mcp.WithDescription("Delete a task from the task store"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)
}
