// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package supervisor runs MapAdmin's long-lived services under a suture v4
supervisor tree.

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddStoreService(services.NewStoreMonitorService("config", db, 30*time.Second, 5*time.Second))
	tree.AddRealtimeService(services.NewPresenceHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		...
	}

A service that returns an error is restarted with backoff. Canceling ctx
stops every layer; services that overrun TreeConfig.ShutdownTimeout are
listed by UnstoppedServiceReport.
*/
package supervisor
