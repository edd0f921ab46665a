package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spiffcs/issuebot/internal/policy"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONOutput is the document written by the JSON formatter.
type JSONOutput struct {
	Reports []JSONReport `json:"reports"`
}

// JSONReport is a policy.Report with its counts spelled out and errors
// rendered as strings.
type JSONReport struct {
	Mode        policy.Mode    `json:"mode"`
	EvaluatedAt time.Time      `json:"evaluatedAt"`
	DryRun      bool           `json:"dryRun"`
	Aborted     string         `json:"aborted,omitempty"`
	Counts      map[string]int `json:"counts"`
	Outcomes    []JSONOutcome  `json:"outcomes"`
}

// JSONOutcome is a policy.Outcome with its error rendered.
type JSONOutcome struct {
	policy.Outcome
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
}

// Format outputs reports as JSON
func (f *JSONFormatter) Format(reports []policy.Report, w io.Writer) error {
	out := JSONOutput{Reports: make([]JSONReport, 0, len(reports))}
	for _, r := range reports {
		out.Reports = append(out.Reports, toJSONReport(r))
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}

func toJSONReport(r policy.Report) JSONReport {
	jr := JSONReport{
		Mode:        r.Mode,
		EvaluatedAt: r.EvaluatedAt,
		DryRun:      r.DryRun,
		Counts:      map[string]int{"acted": r.Acted(), "failed": len(r.Failures())},
		Outcomes:    make([]JSONOutcome, 0, len(r.Outcomes)),
	}
	if r.Aborted != nil {
		jr.Aborted = r.Aborted.Error()
	}

	for _, o := range r.Outcomes {
		jr.Counts[string(o.Tier)]++
		jo := JSONOutcome{Outcome: o}
		if o.Err != nil {
			jo.Error = o.Err.Error()
			jo.ErrorKind = policy.FailureKind(o.Err)
		}
		jr.Outcomes = append(jr.Outcomes, jo)
	}
	return jr
}
