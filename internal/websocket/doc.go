// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package websocket serves the admin presence socket.

Key Components:

  - Hub: accepts upgraded connections and owns their lifetime
  - Client: one socket with a read pump and a write pump
  - Router: decodes frames and applies them to the presence registry
  - Message: the closed set of inbound frame kinds

Each client has two goroutines:

	             ┌───────────── Hub ─────────────┐
	socket ──► readPump ──► Router.Handle ──► presence.Registry
	socket ◄── writePump ◄── send buffer ◄──── Client.Send (any goroutine)

readPump handles frames strictly one after another, so every frame from a
connection is fully applied (state change and replies queued) before the
next one is decoded. Frames from different connections run concurrently.

Wire protocol (JSON text frames):

	→ {"type":"register","payload":{"userId":"u1","userName":"Alice"}}
	← {"type":"admin-sync","payload":{"admins":[...]}}
	← {"type":"registered","payload":{"connectionId":"..."}}
	→ {"type":"presence-update","payload":{"resourceType":"map","resourceId":"42"}}
	→ {"type":"presence-leave"}
	→ {"type":"list-resources","payload":{"resourceType":"layer","search":"road"}}
	← {"type":"resources","payload":{"resourceType":"layer","items":[...]}}
	→ {"type":"get-presences","payload":{"resourceType":"map","resourceId":"42"}}
	← {"type":"resource-presences","payload":{...,"admins":[...]}}
	→ {"type":"ping"}
	← {"type":"pong","payload":null}

Other connections receive presence-join and presence-leave frames. Bad
frames are answered with {"type":"error","payload":"<reason>"} and the
socket stays open. A plain-text greeting is sent on connect and carries no
protocol meaning.

Inbound frames are rate limited per connection with a token bucket
(golang.org/x/time/rate); frames over the limit get an error frame.
*/
package websocket
