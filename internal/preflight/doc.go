// Package preflight provides readiness checks for the filesystem paths
// theoraprobe depends on.
//
// The "config validate" command runs RunAll and reports each Result. Checks
// for disabled features are skipped.
package preflight
