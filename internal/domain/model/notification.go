package model

// ContextEntry is one labeled key/value annotation attached to a Notification.
type ContextEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Notification is a structured report of one event or error. Context entry
// order is significant and preserved through rendering.
type Notification struct {
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Context   []ContextEntry `json:"context"`
}
