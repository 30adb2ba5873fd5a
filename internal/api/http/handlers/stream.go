package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/spec-kit/request-portal/internal/live"
)

const streamHeartbeat = 30 * time.Second

// streamSubscription writes a live subscription as an SSE stream. Each
// snapshot is one `data:` frame holding the full result set; the
// subscription is disposed when the client goes away.
func streamSubscription(c *fiber.Ctx, sub *live.Subscription) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Unsubscribe()
		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case snapshot, ok := <-sub.Updates():
				if !ok {
					return
				}
				payload, err := json.Marshal(requestResponses(snapshot))
				if err != nil {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					return
				}
			case err, ok := <-sub.Errs():
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
				if flushErr := w.Flush(); flushErr != nil {
					return
				}
			case <-heartbeat.C:
				// comment frame; lets a dead connection surface as a
				// flush error between updates
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
}
