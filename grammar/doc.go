package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer writes to a trace with key 'glade.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("glade.grammar")
}
