package importers

// Result aggregates the outcome of a bulk import. Success + Failed + Skipped
// always equals the number of input records; Errors holds one human-readable
// message per failed or skipped record, in input order.
type Result struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

func newResult() Result {
	return Result{Errors: []string{}}
}

type rowOutcome int

const (
	rowImported rowOutcome = iota
	rowSkipped
	rowFailed
)

// rowResult is the per-record outcome folded into the aggregate Result.
// Modeling skips and failures as values keeps the partial-failure contract
// explicit instead of relying on caught panics or sentinel errors.
type rowResult struct {
	outcome rowOutcome
	message string
}

func (r *Result) add(row rowResult) {
	switch row.outcome {
	case rowImported:
		r.Success++
	case rowSkipped:
		r.Skipped++
		r.Errors = append(r.Errors, row.message)
	case rowFailed:
		r.Failed++
		r.Errors = append(r.Errors, row.message)
	}
}
