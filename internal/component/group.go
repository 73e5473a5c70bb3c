package component

import (
	"github.com/cockroachdb/errors"
)

// Group is one of the seven canonical pipeline stage groups.
type Group string

// Canonical stage groups in execution order.
const (
	GroupAnnotators                 Group = "annotators"
	GroupSkillSelectors             Group = "skill_selectors"
	GroupSkills                     Group = "skills"
	GroupResponseAnnotatorSelectors Group = "response_annotator_selectors"
	GroupResponseAnnotators         Group = "response_annotators"
	GroupCandidateAnnotators        Group = "candidate_annotators"
	GroupResponseSelectors          Group = "response_selectors"
)

// Singleton slots. They hold one component each and run outside the
// canonical stage order, so they are not valid dependency targets.
const (
	GroupLastChance Group = "last_chance_service"
	GroupTimeout    Group = "timeout_service"
)

// CanonicalOrder lists the stage groups in canonical execution order.
// Dependency references must always point backwards in this order.
var CanonicalOrder = []Group{
	GroupAnnotators,
	GroupSkillSelectors,
	GroupSkills,
	GroupResponseAnnotatorSelectors,
	GroupResponseAnnotators,
	GroupCandidateAnnotators,
	GroupResponseSelectors,
}

var groupPositions = func() map[Group]int {
	m := make(map[Group]int, len(CanonicalOrder))
	for i, g := range CanonicalOrder {
		m[g] = i
	}
	return m
}()

// ParseGroup converts a stage group name into a Group.
func ParseGroup(s string) (Group, error) {
	g := Group(s)
	if _, ok := groupPositions[g]; !ok {
		return "", errors.Newf("unknown stage group %q", s)
	}
	return g, nil
}

// Singleton reports whether the group is one of the singleton slots.
func (g Group) Singleton() bool {
	return g == GroupLastChance || g == GroupTimeout
}

// Position returns the group's index in canonical order, or -1 for an
// unknown group.
func (g Group) Position() int {
	pos, ok := groupPositions[g]
	if !ok {
		return -1
	}
	return pos
}

// Precedes reports whether g runs strictly before other in canonical order.
// Unknown groups never precede anything.
func (g Group) Precedes(other Group) bool {
	gp, op := g.Position(), other.Position()
	return gp >= 0 && op >= 0 && gp < op
}

func (g Group) String() string {
	return string(g)
}
