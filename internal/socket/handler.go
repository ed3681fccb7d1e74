package socket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Desktop clients connect from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and runs
// their pumps.  Authentication happens after the upgrade, via the
// start event.
func Handler(d *Dispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Printf("socket: upgrade: %v", err)
			return nil
		}
		client := NewClient(conn)
		d.Connect(client)
		go client.writePump()
		go client.readPump(d)
		return nil
	}
}
