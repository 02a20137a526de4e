// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package services adapts MapAdmin's long-running components to suture's
Serve(ctx) error contract.

	HTTPServerService    *http.Server, graceful Shutdown on cancel
	PresenceHubService   websocket.Hub.RunWithContext
	StoreMonitorService  periodic Ping of a backing store, exported as store_up

Each wrapper returns ctx.Err() on an orderly stop and a wrapped error on
failure, so the supervisor restarts only what actually broke. String names
the service in supervisor log events.
*/
package services
