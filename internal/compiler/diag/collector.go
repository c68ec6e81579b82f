package diag

// Collector accumulates diagnostics for one compilation. It never fails:
// callers append as problems are found and inspect the collector after each
// phase. A Collector belongs to a single compilation and is read-only once
// the compilation finishes, so no locking is needed.
type Collector struct {
	diagnostics []*Diagnostic
}

// NewCollector creates an empty diagnostics collector
func NewCollector() *Collector {
	return &Collector{diagnostics: make([]*Diagnostic, 0)}
}

// Add appends a diagnostic. Nil diagnostics are ignored.
func (c *Collector) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	c.diagnostics = append(c.diagnostics, d)
}

// AddError appends an error diagnostic
func (c *Collector) AddError(category Category, message string, span *Span) {
	c.Add(NewError(category, message, span))
}

// AddWarning appends a warning diagnostic
func (c *Collector) AddWarning(category Category, message string, span *Span) {
	c.Add(NewWarning(category, message, span))
}

// All returns every collected diagnostic in the order it was reported
func (c *Collector) All() []*Diagnostic {
	return c.diagnostics
}

// Errors returns the collected error diagnostics in report order
func (c *Collector) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the collected warning diagnostics in report order
func (c *Collector) Warnings() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors returns true if any error diagnostic was collected
func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the total number of collected diagnostics
func (c *Collector) Len() int {
	return len(c.diagnostics)
}
