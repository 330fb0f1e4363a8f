// Package tasks_tools provides the MCP tools for managing tasks in a
// remote task store.
//
// The package has two halves. The Tool Catalog is a static description of
// the four operations (name, purpose, parameter schema) used to answer
// discovery queries. The Tool Dispatcher resolves an invocation's tool
// name, issues exactly one HTTP call against the task store, and
// normalizes the outcome into a result envelope.
//
// # Available Tools
//
//   - add_task: Create a new task
//   - list_tasks: List tasks with optional filter, sort and pagination
//   - update_task: Update fields of an existing task
//   - delete_task: Delete a task
//
// # Error Handling
//
// Dispatch is the single error boundary. Every invocation produces exactly
// one result envelope; failures (unknown tool, transport errors, invalid
// response JSON) are re-expressed as error-flagged envelopes with a
// human-readable "Error: " message and never propagate to the hosting
// process.
//
// # Validation
//
// The parameter schemas in the catalog are discovery metadata only. The
// dispatcher performs no local validation; the remote store rejects
// malformed input with its own error messages, which are relayed to the
// caller unchanged.
package tasks_tools
