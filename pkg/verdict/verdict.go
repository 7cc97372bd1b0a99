// Package verdict judges a completed play-through. It is a decision
// list evaluated in strict order over the world's logs and entity
// states; the first matching rule wins.
package verdict

import (
	"fmt"

	"github.com/praxislabs/gauntlet/pkg/world"
)

// Verdict statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// FailTypeWrongAnswer marks a scenario judgment rather than a syntax or
// protocol slip; the game layer decides whether it ends the attempt.
const FailTypeWrongAnswer = "wrong_answer"

// Verdict is the judgment on a completion claim.
type Verdict struct {
	Status   string
	Message  string
	FailType string
}

// Evaluate runs the decision list against the world. The thresholds
// come from the scenario seed (world.Scenario); they are product
// tuning, not protocol.
func Evaluate(w *world.World) Verdict {
	sc := w.Scenario
	readComments := w.ReadInlineCommentsOf(sc.LivePage)

	// Rule 1: nothing was ever changed.
	if len(w.Actions) == 0 {
		return fail("You claimed completion, but no changes were made — the action log is empty. " +
			"Start by discovering the available tools.")
	}

	// Rule 2: the constrained issue was transitioned at some point.
	if w.TransitionedEver(sc.ConstrainedIssue) {
		if readComments {
			return fail(fmt.Sprintf(
				"You transitioned %s even though the inline comment on the rollout page says it must NOT be transitioned. "+
					"You saw the comment and ignored it.", sc.ConstrainedIssue))
		}
		return fail(fmt.Sprintf(
			"You transitioned %s, but the reviewer's inline comment on the rollout page says it must NOT be transitioned. "+
				"Did you check the page's inline comments before acting?", sc.ConstrainedIssue))
	}

	// Rule 3: not enough of the required transitions happened.
	done := w.TransitionCountExcept(sc.ConstrainedIssue)
	if done < sc.RequiredTransitions {
		return fail(fmt.Sprintf(
			"The rollout page calls for transitioning %d issues (excluding %s), but only %d of %d were transitioned.",
			sc.RequiredTransitions, sc.ConstrainedIssue, done, sc.RequiredTransitions))
	}

	// Rule 4: the constrained issue drifted from its seeded status by
	// some other means.
	if iss, err := w.Issue(sc.ConstrainedIssue); err == nil && iss.Status != sc.ConstrainedStatus {
		return fail(fmt.Sprintf(
			"%s should still be %q but is now %q.", sc.ConstrainedIssue, sc.ConstrainedStatus, iss.Status))
	}

	// Rule 5: success, with or without credit for reading the comments.
	if readComments {
		return Verdict{
			Status: StatusSuccess,
			Message: fmt.Sprintf(
				"Well done. You applied the rollout changes, checked the inline comments, and left %s untouched as the reviewer asked.",
				sc.ConstrainedIssue),
		}
	}
	return Verdict{
		Status: StatusSuccess,
		Message: fmt.Sprintf(
			"The changes are correct and %s was left alone — but you never read the page's inline comments, so that was luck. "+
				"Always check comments before acting on a document.", sc.ConstrainedIssue),
	}
}

func fail(msg string) Verdict {
	return Verdict{Status: StatusFail, Message: msg, FailType: FailTypeWrongAnswer}
}
