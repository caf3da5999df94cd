// Package main hosts the landscaper CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, wires the ImageMagick
// and 7-Zip clients into the matcher, orchestrator and batch walker, and
// renders run summaries, dependency checks and journal history as tables.
// Domain logic lives in the internal packages; commands here only translate
// flags into options and errors into exit status.
package main
