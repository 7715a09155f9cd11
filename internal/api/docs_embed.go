//go:build embed_openapi

package api

import _ "embed"

// Release builds carry the spec in the binary.

//go:embed ../../openapi/openapi.yaml
var openAPIEmbedded []byte

func openAPILoad() ([]byte, error) { return openAPIEmbedded, nil }
