package viewer

import "sync"

// ContentView is the port to the content area. The Loader is its only
// writer.
type ContentView interface {
	// Render replaces the whole content area.
	Render(html string)
	// Append adds html after the current content.
	Append(html string)
	// Clear empties the content area.
	Clear()
	// Reveal scrolls the heading whose text is anchor into view.
	Reveal(anchor string)
}

// SidebarView is the port to the table of contents.
type SidebarView interface {
	Render(html string)
	Clear()
	// Select removes any selected marker, then marks the link with the given
	// href. An empty href leaves nothing selected.
	Select(href string)
}

// Window is the port to document-level state.
type Window interface {
	SetTitle(title string)
	ScrollTo(top float64)
}

// Recorder implements ContentView and Window in memory. It backs the headless
// `view` command and the tests.
type Recorder struct {
	mu       sync.Mutex
	title    string
	content  string
	top      float64
	revealed string
	renders  []string
}

func (r *Recorder) Render(html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = html
	r.renders = append(r.renders, html)
}

func (r *Recorder) Append(html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content += html
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = ""
}

func (r *Recorder) Reveal(anchor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revealed = anchor
}

func (r *Recorder) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
}

func (r *Recorder) ScrollTo(top float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.top = top
}

// Title returns the last title set.
func (r *Recorder) Title() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.title
}

// Content returns the current content area markup.
func (r *Recorder) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// Renders returns every markup passed to Render, oldest first.
func (r *Recorder) Renders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.renders...)
}

// Revealed returns the last anchor passed to Reveal.
func (r *Recorder) Revealed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revealed
}

// ScrollTop returns the last scroll position set.
func (r *Recorder) ScrollTop() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.top
}

// SidebarRecorder is the sidebar half of the in-memory views. It is a
// separate type because ContentView and SidebarView share method names.
type SidebarRecorder struct {
	mu       sync.Mutex
	html     string
	selected string
}

func (s *SidebarRecorder) Render(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.html = html
}

func (s *SidebarRecorder) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.html = ""
	s.selected = ""
}

func (s *SidebarRecorder) Select(href string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = href
}

// HTML returns the rendered sidebar markup.
func (s *SidebarRecorder) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html
}

// Selected returns the href of the selected link, or "".
func (s *SidebarRecorder) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}
