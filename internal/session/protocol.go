package session

// Client message types.
const (
	msgHello        = "hello"
	msgHashChange   = "hashchange"
	msgSidebarClick = "sidebar_click"
	msgAnchor       = "anchor"
	msgRetry        = "retry"
	msgScroll       = "scroll"
	msgBackTop      = "backtop"
)

// Server operations.
const (
	opReady         = "ready"
	opSidebar       = "sidebar"
	opSidebarSelect = "select"
	opContent       = "content"
	opAppend        = "append"
	opReveal        = "reveal"
	opTitle         = "title"
	opFragment      = "fragment"
	opScroll        = "scroll"
	opBackTop       = "backtop"
	opError         = "error"
)

// clientMessage is an event reported by the browser.
type clientMessage struct {
	Type         string  `json:"type"`
	Fragment     string  `json:"fragment,omitempty"`
	Href         string  `json:"href,omitempty"`
	Text         string  `json:"text,omitempty"`
	Top          float64 `json:"top,omitempty"`
	ScrollHeight float64 `json:"scroll_height,omitempty"`
	WindowHeight float64 `json:"window_height,omitempty"`
}

// serverMessage is a DOM operation for the browser to apply.
type serverMessage struct {
	Op        string  `json:"op"`
	SessionID string  `json:"session_id,omitempty"`
	HTML      string  `json:"html,omitempty"`
	Href      string  `json:"href,omitempty"`
	Anchor    string  `json:"anchor,omitempty"`
	Title     string  `json:"title,omitempty"`
	Fragment  string  `json:"fragment,omitempty"`
	Top       float64 `json:"top,omitempty"`
	Visible   bool    `json:"visible,omitempty"`
	Error     string  `json:"error,omitempty"`
}
