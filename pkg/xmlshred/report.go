package xmlshred

// DocumentResult records the outcome of shredding and loading one XML
// document. A document either fully commits or fully rolls back, so the row
// counts are all-or-nothing.
type DocumentResult struct {
	// Path identifies the source document.
	Path string

	// Err is the failure cause, nil on success.
	Err error

	// RowCounts maps table name to the number of rows inserted for this
	// document. Empty when the document failed.
	RowCounts map[string]int
}

// Failed reports whether the document was rolled back.
func (r DocumentResult) Failed() bool {
	return r.Err != nil
}

// RunReport aggregates a load run over a batch of documents.
type RunReport struct {
	// Documents holds the per-document outcomes in processing order.
	Documents []DocumentResult

	// Succeeded and Failed count documents, not rows.
	Succeeded int
	Failed    int

	// TotalRows maps table name to the total rows committed across all
	// successful documents.
	TotalRows map[string]int
}

// Add folds one document outcome into the report.
func (r *RunReport) Add(res DocumentResult) {
	r.Documents = append(r.Documents, res)
	if res.Failed() {
		r.Failed++
		return
	}
	r.Succeeded++
	if r.TotalRows == nil {
		r.TotalRows = make(map[string]int)
	}
	for table, n := range res.RowCounts {
		r.TotalRows[table] += n
	}
}

// Failures returns the failed document results, in processing order.
func (r *RunReport) Failures() []DocumentResult {
	var out []DocumentResult
	for _, d := range r.Documents {
		if d.Failed() {
			out = append(out, d)
		}
	}
	return out
}
