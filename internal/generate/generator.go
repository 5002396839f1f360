// Package generate produces formatted daily report text from raw sheet
// data. The engine treats generation as an opaque call with a
// success/error result.
package generate

import (
	"context"

	"git.home.luguber.info/inful/reportbot/internal/source"
)

// Request carries the data a generator needs to draft the report.
type Request struct {
	Date    string        // ISO date the report is for
	Record  source.Record // today's matched row
	Records []source.Record
	Context string // optional free-form context, e.g. "automated daily run"
}

// Result is the outcome of a successful generation.
type Result struct {
	Report string // formatted report text (markdown)
	Model  string // identifier of the model that produced it
	Prompt string // prompt sent, retained for the archive
}

// Generator drafts a formatted report. Implementations must respect the
// context deadline.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
	Name() string
}
