package respond

const (
	EventToken    = "token"
	EventSources  = "sources"
	EventComplete = "complete"
	EventError    = "error"
)

// StreamEvent is one frame sent to the browser. Content is a string for every
// type except sources, where it is the list of sources.
type StreamEvent struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}
