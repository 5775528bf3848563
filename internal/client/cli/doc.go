// Package cli implements the interactive journal client: a small REPL for
// composing entries, recording audio/video attachments, and saving to the
// server with a bounded attachment upload pass.
package cli
