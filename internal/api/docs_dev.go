//go:build !embed_openapi

package api

import "os"

// openAPILoad reads the spec from the working tree; dev mode, so edits to
// openapi/openapi.yaml show up without a rebuild.
func openAPILoad() ([]byte, error) { return os.ReadFile("openapi/openapi.yaml") }
