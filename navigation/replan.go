package navigation

import (
	"github.com/lixenwraith/gridplan/core"
)

// ReplanPolicy decides, before each move, whether the agent must plan again
type ReplanPolicy interface {
	// ShouldReplan is given the remaining plan and whether any plan was made yet
	ShouldReplan(plan []core.Point, planned bool, m Map) bool
}

// LookaheadPolicy replans when the plan is empty or any of its next Steps cells is not traversable
type LookaheadPolicy struct {
	Steps int // Clamped to at least 1
}

func (p LookaheadPolicy) ShouldReplan(plan []core.Point, planned bool, m Map) bool {
	if len(plan) == 0 {
		return true
	}
	k := p.Steps
	if k < 1 {
		k = 1
	}
	if k > len(plan) {
		k = len(plan)
	}
	for _, c := range plan[:k] {
		if !m.Traversable(c) {
			return true
		}
	}
	return false
}

// OncePolicy plans exactly once and then follows the plan blindly
type OncePolicy struct{}

func (OncePolicy) ShouldReplan(plan []core.Point, planned bool, m Map) bool {
	return !planned
}
