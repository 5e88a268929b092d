// Package config provides configuration loading, merging, and validation
// facilities for the clinic sync agent.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. .env file (loaded into the process environment)
//  2. Environment variables
//  3. Command-line flags
//  4. JSON config file
//
// Built-in defaults fill whatever is still unset. The entry point is
// [GetStructuredConfig].
package config
