// Package taskstore provides a client for the remote task record store.
//
// The store exposes a small REST surface rooted at a single base address
// that is configured once at process start:
//   - POST   <base>       create a task record
//   - GET    <base>       list task records, with optional filter/sort/page query
//   - PATCH  <base>/<id>  partially update a task record
//   - DELETE <base>/<id>  delete a task record
//
// The client is a thin pass-through. Request fields are
// forwarded verbatim and response bodies are returned as raw JSON
// regardless of HTTP status; the store's own validation and error
// messages surface to the caller unchanged. Only DeleteTask inspects the
// status code, reporting binary success or failure without reading the
// body.
//
// No timeout is imposed by the client itself: every method takes a
// context.Context, and cancellation or deadline control belongs to the
// caller.
//
// # Example Usage
//
//	client := taskstore.New("https://tasks.example.com/api/tasks", nil)
//
//	// Create a task
//	raw, err := client.CreateTask(ctx, taskstore.TaskFields{"name": "Buy milk"})
//	if err != nil {
//	    return err
//	}
//
//	// List open tasks, newest first
//	raw, err = client.ListTasks(ctx, taskstore.ListQuery{
//	    Filter: "(done=false)",
//	    Sort:   "-created",
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Delete a task
//	ok, err := client.DeleteTask(ctx, "abc123")
//	if err != nil {
//	    return err
//	}
package taskstore
