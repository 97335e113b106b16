package diag

// Reporter receives findings from the analysis passes.
type Reporter interface {
	Report(f Finding)
}

// ReportBuilder accumulates finding details before emitting to a Reporter.
type ReportBuilder struct {
	reporter Reporter
	finding  Finding
	emitted  bool
}

// NewReportBuilder constructs a builder bound to r. Severity follows the
// conflict kind.
func NewReportBuilder(r Reporter, conflict Conflict, rng Range, source, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		finding: Finding{
			Range:    rng,
			Severity: conflict.Severity(),
			Code:     RequirementMention,
			Message:  msg,
			Source:   source,
			Conflict: conflict,
		},
	}
}

// ReportInfo is a shortcut for a sighting without conflict.
func ReportInfo(r Reporter, rng Range, source, msg string) *ReportBuilder {
	return NewReportBuilder(r, NoMismatch, rng, source, msg)
}

// ReportConflict is a shortcut for an error finding.
func ReportConflict(r Reporter, conflict Conflict, rng Range, source, msg string) *ReportBuilder {
	return NewReportBuilder(r, conflict, rng, source, msg)
}

// WithRelated sets the location the finding conflicts with.
func (b *ReportBuilder) WithRelated(loc Location, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.finding.Related = &Related{Location: loc, Message: msg}
	return b
}

// Emit sends the finding to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.finding)
	}
	b.emitted = true
}

// Finding returns the accumulated finding without emitting.
func (b *ReportBuilder) Finding() Finding {
	if b == nil {
		return Finding{}
	}
	return b.finding
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(f Finding) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(f)
}
