package session

import (
	"github.com/kalambet/docent/internal/catalog"
	"github.com/kalambet/docent/internal/portfolio"
)

// Resolution is the outcome of checking a catalog question against the
// owner's verified answers: either the verified text to show directly, or
// the question text to dispatch to the answering service.
type Resolution struct {
	Verified bool
	// Text is the verified answer when Verified, otherwise the full
	// question text to send out.
	Text string
}

// Resolve applies the precedence policy in one place: a non-empty verified
// answer always wins over a generated one, and only the absence of a
// verified answer triggers an external call. Both the menu flow and any
// other entry point must go through this function so they cannot diverge.
func Resolve(q catalog.Question, p *portfolio.Portfolio) Resolution {
	if answer, ok := p.VerifiedAnswer(q.Key); ok {
		return Resolution{Verified: true, Text: answer}
	}
	return Resolution{Text: q.Text}
}
