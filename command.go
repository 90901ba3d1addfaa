package natview

import "github.com/natview/natview/internal/platform"

// commandKind tags one intent against one window. Commands carry only
// value data; they never carry references to host callbacks.
type commandKind int

const (
	cmdLoadURL commandKind = iota
	cmdLoadHTML
	cmdEvaluateScript
	cmdPostMessage
	cmdSetTitle
	cmdSetSize
	cmdSetMinSize
	cmdSetMaxSize
	cmdSetPosition
	cmdSetResizable
	cmdSetDecorations
	cmdSetAlwaysOnTop
	cmdShow
	cmdHide
	cmdClose
	cmdFocus
	cmdMaximize
	cmdMinimize
	cmdUnmaximize
	cmdReload
	cmdGetCookies
	cmdInstallDocumentStart
)

// command is the FIFO queue's element: one kind plus the value payload it
// needs, targeted at one window id.
type command struct {
	id   platform.WindowID
	kind commandKind

	str          string
	size         platform.Size
	pos          platform.Point
	flag         bool
	cookieFuture *CookiesFuture // cmdGetCookies only
}

// apply executes one command against the adapter. A command against a
// window the manager no longer knows about is dropped silently — the
// window closed between enqueue and drain.
func (m *manager) apply(a platform.Adapter, c command) {
	switch c.kind {
	case cmdLoadURL:
		a.LoadURL(c.id, c.str)
	case cmdLoadHTML:
		a.LoadHTML(c.id, c.str)
	case cmdEvaluateScript:
		a.EvaluateScript(c.id, c.str)
	case cmdInstallDocumentStart:
		a.InstallDocumentStartScript(c.id, c.str)
	case cmdPostMessage:
		a.PostMessage(c.id, c.str)
	case cmdSetTitle:
		a.SetTitle(c.id, c.str)
	case cmdSetSize:
		a.SetSize(c.id, c.size)
	case cmdSetMinSize:
		a.SetMinSize(c.id, c.size)
	case cmdSetMaxSize:
		a.SetMaxSize(c.id, c.size)
	case cmdSetPosition:
		a.SetPosition(c.id, c.pos)
	case cmdSetResizable:
		a.SetResizable(c.id, c.flag)
	case cmdSetDecorations:
		a.SetDecorations(c.id, c.flag)
	case cmdSetAlwaysOnTop:
		a.SetAlwaysOnTop(c.id, c.flag)
	case cmdShow:
		a.Show(c.id)
	case cmdHide:
		a.Hide(c.id)
	case cmdClose:
		a.Close(c.id)
	case cmdFocus:
		a.Focus(c.id)
	case cmdMaximize:
		a.Maximize(c.id)
	case cmdMinimize:
		a.Minimize(c.id)
	case cmdUnmaximize:
		a.Unmaximize(c.id)
	case cmdReload:
		a.Reload(c.id)
	case cmdGetCookies:
		reqID := a.GetCookies(c.id, c.str)
		if c.cookieFuture != nil {
			m.cookieMu.Lock()
			m.cookieFut[reqID] = c.cookieFuture
			m.cookieMu.Unlock()
		}
	}
}
