// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package presence tracks which admins are connected and which resource each
of them is currently working on.

A Registry owns the table of live connections. Each connection starts
anonymous (Track), gains an identity on RegisterConnection and holds at
most one PresenceClaim at a time:

	UNCLAIMED --UpdatePresence--> CLAIMED --UpdatePresence--> CLAIMED
	    ^                            |
	    +--ClearPresence/close-------+

Broadcast rules:

  - presence-join and presence-leave go to every connection except the one
    whose action caused them.
  - admin-sync goes only to the connection that just registered.
  - Broadcast sends to every tracked connection; closed ones drop the frame.

Presence is process-local and never persisted. Running more than one
server instance requires a shared store in front of the Registry.
*/
package presence
