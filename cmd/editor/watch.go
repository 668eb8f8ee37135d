package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/gorilla/websocket"

	synchub "mangapages/internal/sync"
)

// watchPage follows the hub's websocket and reports changes to pageID. The
// editor never applies them itself; the operator decides whether to pull.
func watchPage(ctx context.Context, baseURL, pageID string, out io.Writer) error {
	endpoint, err := websocketURL(baseURL, "/ws")
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev synchub.PageEvent
		if json.Unmarshal(msg, &ev) != nil || ev.PageID != pageID {
			continue
		}
		fmt.Fprintf(out, "\n[server] %s %s (%d elements); pull to take it\n", ev.Type, ev.PageID, ev.Elements)
	}
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
