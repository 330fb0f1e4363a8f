package common

// TaskIDFromArgs extracts the task_id argument from request arguments.
// Returns the empty string when the argument is absent or not a string;
// the dispatcher forwards whatever it gets and lets the task store reject
// the request with its own message.
func TaskIDFromArgs(args map[string]interface{}) string {
	taskID, _ := args["task_id"].(string)
	return taskID
}
