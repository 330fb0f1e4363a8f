package taskstore

// TaskFields is the JSON object sent as the request body for create and
// update operations. Keys absent from the map are omitted from the body,
// and values are forwarded verbatim; the store decides what to accept.
type TaskFields map[string]any

// ListQuery holds the optional query parameters for listing tasks.
// Zero-valued fields are omitted from the query string. Filter and sort
// expressions are opaque to this client and interpreted by the store.
type ListQuery struct {
	// Filter is a store-side filter expression, e.g. "(done=false)".
	Filter string

	// Sort names a sort key, with a leading "-" for descending order,
	// e.g. "-created".
	Sort string

	// Page is the 1-based page number in its decimal string form.
	Page string
}

// IsZero reports whether no query parameter is set.
func (q ListQuery) IsZero() bool {
	return q == ListQuery{}
}
