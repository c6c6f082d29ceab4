// Package api holds the static API documentation served at /api-docs.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
