// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Catalog API serves a read-only item catalog from a JSON file.
//
// @title Catalog API
// @version 1.0
// @description Read-only access to the item catalog: list with name filter and pagination, lookup by id, and cached statistics.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "request_id": "..."
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/catalog/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3001
// @BasePath /
// @schemes http https
//
// @tag.name Items
// @tag.description Item listing and lookup
//
// @tag.name Stats
// @tag.description Cached catalog statistics
//
// @tag.name Core
// @tag.description Liveness and readiness checks
package main
