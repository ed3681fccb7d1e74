package socket

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// handlerTimeout bounds the store calls made by one inbound event.
const handlerTimeout = 10 * time.Second

// Dispatcher routes inbound frames to the session and collaboration
// services.  It is the single entry point of the protocol: each
// event runs a short synchronous handler to completion.
type Dispatcher struct {
	Session *Session
	Collab  *Collab
}

// Connect registers a fresh connection.
func (d *Dispatcher) Connect(c *Client) {
	d.Session.Connect(c)
}

// Disconnect unwinds a connection.  Deliverable at any time,
// idempotent.
func (d *Dispatcher) Disconnect(c *Client) {
	d.Session.Disconnect(c)
}

// Dispatch decodes and runs one inbound event.  Unknown events and
// malformed payloads are dropped; the broadcast layer never reports
// errors back to the sender.
func (d *Dispatcher) Dispatch(c *Client, event string, payload json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch event {
	case EvStart:
		var p startPayload
		if decode(event, payload, &p) {
			d.Session.Start(ctx, c, p)
		}
	case EvOperationSelected:
		var p opPayload
		if decode(event, payload, &p) {
			d.Session.SelectOperation(ctx, c, p)
		}
	case EvAddUserToOperation:
		var p opPayload
		if decode(event, payload, &p) {
			d.Session.AddUserToOperation(ctx, c, p)
		}
	case EvUpdateOperationList:
		var p startPayload
		if decode(event, payload, &p) {
			d.Session.UpdateOperationList(ctx, c, p)
		}
	case EvChatMessage:
		var p chatPayload
		if decode(event, payload, &p) {
			d.Collab.ChatMessage(ctx, c, p)
		}
	case EvEditMessage:
		var p editPayload
		if decode(event, payload, &p) {
			d.Collab.EditMessage(ctx, c, p)
		}
	case EvDeleteMessage:
		var p deletePayload
		if decode(event, payload, &p) {
			d.Collab.DeleteMessage(ctx, c, p)
		}
	case EvFileSave:
		var p fileSavePayload
		if decode(event, payload, &p) {
			d.Collab.FileSave(ctx, c, p)
		}
	default:
		log.Printf("socket: unknown event %q from %s", event, c.ID)
	}
}

func decode(event string, raw json.RawMessage, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("socket: bad %s payload: %v", event, err)
		return false
	}
	return true
}
