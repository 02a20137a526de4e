// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

/*
Package models defines the data structures shared across MapAdmin.

Model Categories:

1. Presence Models:
  - ResourceType: the addressable resource kinds (map, layer, tool, group, service)
  - PresenceClaim: one admin currently viewing or editing one resource
  - PresenceLeave, AdminSync, Registered: outbound presence payloads

2. Socket Envelope:
  - Envelope: the {type, payload} frame exchanged over the admin websocket
  - MessageType* constants for every outbound frame kind

3. Search Models:
  - SearchRequest, SearchSource: one similarity search call
  - SearchHit: one ranked row returned by the GIS store
  - AutocompleteResponse: the HTTP response body

4. Resource Models:
  - ResourceSummary: id/title/updated record from the primary config store

5. API Models:
  - ErrorResponse: {errorId, error, hajkCode?} error body
  - HealthResponse: liveness/readiness body

All JSON tags use the camelCase names the admin client already speaks.
*/
package models
