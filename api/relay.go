package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"search-launcher/tab"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleRelay serves one content-script connection. The tab id comes from the
// "tab" query parameter; an empty one is generated and sent back in the
// welcome frame so the script can reuse it when it reconnects.
func (h *handler) handleRelay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("relay upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeFrame := func(f tab.Frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(f)
	}

	t, out, kick := h.tabs.Connect(r.URL.Query().Get("tab"))
	defer h.tabs.Disconnect(t, out)
	log := h.log.With(zap.String("tab", t.ID))

	if err := writeFrame(tab.Frame{Type: tab.TypeWelcome, TabID: t.ID}); err != nil {
		log.Debug("relay welcome failed", zap.Error(err))
		return
	}

	// Pump requests to the content script. Exits when Disconnect closes out.
	go func() {
		for f := range out {
			if err := writeFrame(f); err != nil {
				return
			}
		}
	}()

	// A newer connection for the same tab closes this one so the read loop
	// below unblocks.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-kick:
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var f tab.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}

		switch f.Type {
		case tab.TypeHello, tab.TypeState:
			t.Report(f.URL, f.Focused)
		case tab.TypeResponse:
			if !t.Resolve(f) {
				log.Debug("response without pending request", zap.String("id", f.ID))
			}
		default:
			log.Debug("unknown relay frame", zap.String("type", f.Type))
		}
	}
}
