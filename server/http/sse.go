package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/w-h-a/ragchat/internal/service/chat"
)

const doneSentinel = "[DONE]"

// serveSSE relays chat events as server-sent events. The done sentinel is
// only written after the service has persisted the assistant message.
func serveSSE(w http.ResponseWriter, r *http.Request, events <-chan chat.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for event := range events {
		if event.Err != nil {
			writeSSEFrame(w, "error", event.Err.Error())
			flusher.Flush()
			return
		}

		if event.Done {
			writeSSEFrame(w, "", doneSentinel)
			flusher.Flush()
			return
		}

		writeSSEFrame(w, "", event.Data)
		flusher.Flush()
	}
}

// writeSSEFrame emits one event; each line of data gets its own data: prefix
// per the SSE wire format.
func writeSSEFrame(w http.ResponseWriter, event string, data string) {
	if len(event) > 0 {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
