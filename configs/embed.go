// Package configs embeds the example configuration template so it ships
// with every distribution, source builds included.
package configs

import _ "embed"

// ExampleReaderYAML is the annotated example reader configuration.
//
//go:embed reader.example.yaml
var ExampleReaderYAML string
