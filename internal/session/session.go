// Package session bridges a browser tab to a viewer.Viewer over a
// websocket. The browser reports fragment changes, clicks and scroll
// positions; the session answers with DOM operations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doc-web/internal/logging"
	"github.com/ziadkadry99/doc-web/internal/nav"
	"github.com/ziadkadry99/doc-web/internal/scroll"
	"github.com/ziadkadry99/doc-web/internal/viewer"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ScrollSettings tune the back-to-top behaviour.
type ScrollSettings struct {
	Interval         time.Duration
	BackTopThreshold float64
}

// Handler upgrades requests to websocket sessions.
type Handler struct {
	hub    *Hub
	cfg    viewer.Config
	deps   viewer.Deps
	scroll ScrollSettings
	logger *zap.Logger
}

// NewHandler creates a Handler registering its sessions in hub.
func NewHandler(hub *Hub, cfg viewer.Config, deps viewer.Deps, scrollCfg ScrollSettings, logger *zap.Logger) *Handler {
	if scrollCfg.BackTopThreshold <= 0 {
		scrollCfg.BackTopThreshold = scroll.DefaultBackTopThreshold
	}
	return &Handler{
		hub:    hub,
		cfg:    cfg,
		deps:   deps,
		scroll: scrollCfg,
		logger: logging.OrNop(logger),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	s := newSession(conn, h)
	h.hub.add(s)
	defer h.hub.remove(s)

	s.logger.Info("session opened")
	s.run(r.Context())
	s.logger.Info("session closed")
}

// Session is one connected browser tab.
type Session struct {
	ID string

	conn    *websocket.Conn
	writeMu sync.Mutex

	viewer   *viewer.Viewer
	loc      *nav.MemoryLocation
	animator *scroll.Animator
	scroll   ScrollSettings
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	asyncMu sync.Mutex
	closed  bool

	started atomic.Bool

	vpMu         sync.Mutex
	top          float64
	scrollHeight float64
	windowHeight float64
	backTopShown bool
}

func newSession(conn *websocket.Conn, h *Handler) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		conn:     conn,
		animator: scroll.NewAnimator(h.scroll.Interval),
		scroll:   h.scroll,
	}
	s.logger = h.logger.With(zap.String("session_id", s.ID))
	s.loc = nav.NewMemoryLocation("", func(fragment string) {
		s.send(serverMessage{Op: opFragment, Fragment: fragment})
	})

	deps := h.deps
	deps.Logger = s.logger
	s.viewer = viewer.New(h.cfg, deps, viewer.Ports{
		Location: s.loc,
		Content:  contentPort{s},
		Sidebar:  sidebarPort{s},
		Window:   windowPort{s},
	})
	return s
}

func (s *Session) run(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer func() {
		s.asyncMu.Lock()
		s.closed = true
		s.asyncMu.Unlock()

		s.cancel()
		s.animator.Stop()
		s.wg.Wait()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError("invalid message format")
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) handle(msg clientMessage) {
	switch msg.Type {
	case msgHello:
		s.loc.Sync(msg.Fragment)
		if s.started.Load() {
			s.async(s.viewer.Navigate)
			return
		}
		s.send(serverMessage{Op: opReady, SessionID: s.ID})
		// The sidebar is in place before the first page load, so the first
		// page already gets its selection and footer.
		if err := s.viewer.LoadSidebar(s.ctx); err != nil {
			s.logger.Warn("sidebar unavailable", zap.Error(err))
		}
		s.started.Store(true)
		s.async(s.viewer.Navigate)
	case msgHashChange:
		s.loc.Sync(msg.Fragment)
		if s.started.Load() {
			s.async(s.viewer.Navigate)
		}
	case msgSidebarClick:
		s.viewer.SidebarClick(msg.Href)
	case msgAnchor:
		s.viewer.AnchorClick(msg.Text)
	case msgRetry:
		s.async(s.viewer.Navigate)
	case msgScroll:
		s.reportScroll(msg.Top, msg.ScrollHeight, msg.WindowHeight)
	case msgBackTop:
		s.vpMu.Lock()
		step := scroll.InitialStep(s.scrollHeight, s.windowHeight)
		s.vpMu.Unlock()
		s.animator.ScrollToTop(s.ctx, viewportPort{s}, step)
	default:
		s.sendError("unknown message type: " + msg.Type)
	}
}

// Refresh reloads the sidebar and the current page.
func (s *Session) Refresh() {
	if !s.started.Load() {
		return
	}
	s.async(s.viewer.Refresh)
}

// async runs a load off the read loop so a newer fragment can supersede it.
func (s *Session) async(fn func(context.Context) error) {
	s.asyncMu.Lock()
	defer s.asyncMu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := fn(s.ctx)
		switch {
		case err == nil, errors.Is(err, viewer.ErrSuperseded), errors.Is(err, context.Canceled):
		default:
			s.logger.Info("load finished with error", zap.Error(err))
		}
	}()
}

func (s *Session) reportScroll(top, scrollHeight, windowHeight float64) {
	s.vpMu.Lock()
	s.top = top
	s.scrollHeight = scrollHeight
	s.windowHeight = windowHeight
	show := scroll.ShowBackTop(top, s.scroll.BackTopThreshold)
	changed := show != s.backTopShown
	s.backTopShown = show
	s.vpMu.Unlock()

	if changed {
		s.send(serverMessage{Op: opBackTop, Visible: show})
	}
}

func (s *Session) send(msg serverMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("websocket write", zap.String("op", msg.Op), zap.Error(err))
	}
}

func (s *Session) sendError(message string) {
	s.send(serverMessage{Op: opError, Error: message})
}

type contentPort struct{ s *Session }

func (p contentPort) Render(html string) { p.s.send(serverMessage{Op: opContent, HTML: html}) }
func (p contentPort) Append(html string) { p.s.send(serverMessage{Op: opAppend, HTML: html}) }
func (p contentPort) Clear()             { p.s.send(serverMessage{Op: opContent}) }
func (p contentPort) Reveal(anchor string) {
	p.s.send(serverMessage{Op: opReveal, Anchor: anchor})
}

type sidebarPort struct{ s *Session }

func (p sidebarPort) Render(html string) { p.s.send(serverMessage{Op: opSidebar, HTML: html}) }
func (p sidebarPort) Clear()             { p.s.send(serverMessage{Op: opSidebar}) }
func (p sidebarPort) Select(href string) { p.s.send(serverMessage{Op: opSidebarSelect, Href: href}) }

type windowPort struct{ s *Session }

func (p windowPort) SetTitle(title string) { p.s.send(serverMessage{Op: opTitle, Title: title}) }
func (p windowPort) ScrollTo(top float64)  { viewportPort(p).SetScrollTop(top) }

// viewportPort mirrors the browser's scroll position for the animator.
type viewportPort struct{ s *Session }

func (p viewportPort) ScrollTop() float64 {
	p.s.vpMu.Lock()
	defer p.s.vpMu.Unlock()
	return p.s.top
}

func (p viewportPort) SetScrollTop(top float64) {
	p.s.vpMu.Lock()
	p.s.top = top
	p.s.vpMu.Unlock()
	p.s.send(serverMessage{Op: opScroll, Top: top})
}
