package arbitrator

import (
	"testing"

	"github.com/skyops/irops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collationWith(recommendations map[models.AgentName]string) *models.Collation {
	c := models.NewCollation(models.PhaseRevision)
	for _, name := range models.AllAgents {
		rec, ok := recommendations[name]
		if !ok {
			c.Responses[name] = &models.AgentResponse{AgentName: name, Status: models.StatusError}
			continue
		}
		c.Responses[name] = &models.AgentResponse{
			AgentName:      name,
			Recommendation: rec,
			Confidence:     0.8,
			Status:         models.StatusSuccess,
		}
	}
	return c
}

func TestDetectTimingMismatch(t *testing.T) {
	c := collationWith(map[models.AgentName]string{
		models.AgentCrewCompliance: "a 6 hour delay keeps the crew legal",
		models.AgentNetwork:        "limit to a 3-hour delay to protect the evening bank",
		models.AgentFinance:        "either works financially",
	})

	conflicts := DetectConflicts(c, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictTimingMismatch, conflicts[0].Type)
	assert.Contains(t, conflicts[0].Description, "crew_compliance asks for 6 hours")
	assert.Contains(t, conflicts[0].Description, "network asks for 3 hours")
}

func TestDetectTimingAgreementIsNoConflict(t *testing.T) {
	c := collationWith(map[models.AgentName]string{
		models.AgentCrewCompliance: "a 3 hour delay keeps the crew legal",
		models.AgentNetwork:        "a 3-hour delay protects the bank",
	})
	assert.Empty(t, DetectConflicts(c, nil))
}

func TestDetectResourceContention(t *testing.T) {
	c := collationWith(map[models.AgentName]string{
		models.AgentMaintenance: "keep A6-EYB in the hangar for the check",
		models.AgentNetwork:     "swap to A6-EYB for the rotation",
	})

	conflicts := DetectConflicts(c, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictResourceContention, conflicts[0].Type)
	assert.Contains(t, conflicts[0].Description, "A6-EYB")
	assert.ElementsMatch(t, []models.AgentName{models.AgentMaintenance, models.AgentNetwork}, conflicts[0].Agents)
}

func TestDetectConstraintVsPreference(t *testing.T) {
	constraints := []models.SafetyOverride{{
		SafetyAgent:       models.AgentRegulatory,
		BindingConstraint: "Arrival must be before 23:00 GMT",
	}}
	c := collationWith(map[models.AgentName]string{
		models.AgentRegulatory: "hold until the curfew window is confirmed",
		models.AgentFinance:    "proceed without changes, compensation exposure is minimal",
	})

	conflicts := DetectConflicts(c, constraints)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictConstraintPreference, conflicts[0].Type)
	assert.Contains(t, conflicts[0].Description, "finance")
	assert.Contains(t, conflicts[0].Description, "23:00 GMT")
}

func TestConstraintPreferenceNeedsConstraints(t *testing.T) {
	c := collationWith(map[models.AgentName]string{
		models.AgentFinance: "proceed without changes",
	})
	assert.Empty(t, DetectConflicts(c, nil))
}

func TestFailedAgentsAreIgnored(t *testing.T) {
	c := collationWith(map[models.AgentName]string{
		models.AgentCrewCompliance: "a 6 hour delay is required",
		// network failed, so its 3 hour claim never existed
	})
	assert.Empty(t, DetectConflicts(c, nil))
}

func TestResolutionFor(t *testing.T) {
	for _, typ := range []string{ConflictTimingMismatch, ConflictResourceContention, ConflictConstraintPreference} {
		res := resolutionFor(Conflict{Type: typ, Description: "d"})
		assert.Equal(t, typ, res.ConflictType)
		assert.NotEmpty(t, res.Resolution)
		assert.NotEmpty(t, res.Rationale)
	}
}
