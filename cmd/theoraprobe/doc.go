// Package main hosts the theoraprobe CLI entrypoint and command graph.
//
// The Cobra command tree opens Ogg files through the player package, prints
// the negotiated Theora stream parameters, keeps a SQLite history of probe
// outcomes, and scaffolds configuration. Configuration and logger setup are
// resolved once in commandContext so subcommands only deal with output.
package main
