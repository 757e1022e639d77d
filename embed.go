// Package root embeds repository-level assets needed at runtime.
package root

import "embed"

// Migrations holds the goose SQL migrations applied by the migrate command.
//
//go:embed migrations
var Migrations embed.FS
