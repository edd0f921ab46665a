package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/issuebot/internal/activity"
)

// PartialMutationFailure reports a tier sequence that stopped after some of
// its mutations had already been applied. Nothing is rolled back; the
// operator reconciles the issue by hand.
type PartialMutationFailure struct {
	IssueID   string
	Completed []Step
	Failed    Step
	Err       error
}

func (e *PartialMutationFailure) Error() string {
	done := make([]string, len(e.Completed))
	for i, s := range e.Completed {
		done[i] = s.String()
	}
	return fmt.Sprintf("issue %s: %s failed after %s: %v",
		e.IssueID, e.Failed, strings.Join(done, ", "), e.Err)
}

func (e *PartialMutationFailure) Unwrap() error {
	return e.Err
}

// Failure kinds reported by FailureKind.
const (
	KindInput    = "input"
	KindPartial  = "partial"
	KindMutation = "mutation"
)

// FailureKind classifies an outcome error: bad issue data, a tier sequence
// that stopped part way, or a mutation that failed before changing anything.
func FailureKind(err error) string {
	var inputErr *activity.InputError
	var partial *PartialMutationFailure
	switch {
	case errors.As(err, &inputErr):
		return KindInput
	case errors.As(err, &partial):
		return KindPartial
	default:
		return KindMutation
	}
}
