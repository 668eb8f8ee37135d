package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local editor tool; no browser origin to check
	},
}

// WSHandler upgrades GET /ws and streams page events to the client until it
// disconnects. Inbound frames are read only to notice the close.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.WithError(err).Debug("ws upgrade failed")
			return
		}
		log := hub.log.WithFields(logrus.Fields{"transport": "websocket", "remote": c.ClientIP()})

		hub.AddWS(ws)
		log.Info("client connected")
		defer func() {
			hub.RemoveWS(ws)
			log.Info("client disconnected")
		}()

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}
