package planmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danalexilewis/taskgraph/internal/fault"
)

const sampleDoc = `# Checkout Rework
INTENT: Replace the legacy checkout flow with the new payment service.

TASK: checkout-api
TITLE: Build checkout API
FEATURE: checkout
AREA: backend
ACCEPTANCE:
- POST /checkout returns 201
- idempotency keys honored

TASK: checkout-ui
TITLE: Wire up checkout UI
AREA: frontend
BLOCKED_BY: checkout-api

TASK: checkout-metrics
TITLE: Emit checkout metrics
BLOCKED_BY: checkout-api, checkout-ui
`

func TestParseRoundTrip(t *testing.T) {
	plan := Parse(sampleDoc)
	require.Equal(t, "Checkout Rework", plan.Title)
	require.Equal(t, "Replace the legacy checkout flow with the new payment service.", plan.Intent)
	require.Len(t, plan.Tasks, 3)

	first, second, third := plan.Tasks[0], plan.Tasks[1], plan.Tasks[2]
	assert.Equal(t, "checkout-api", first.StableKey)
	assert.Equal(t, "Build checkout API", first.Title)
	assert.Equal(t, "checkout", first.FeatureKey)
	assert.Equal(t, "backend", first.Area)
	assert.Equal(t, []string{"POST /checkout returns 201", "idempotency keys honored"}, first.Acceptance)

	assert.Equal(t, []string{"checkout-api"}, second.BlockedBy)
	assert.Equal(t, []string{"checkout-api", "checkout-ui"}, third.BlockedBy)
}

func TestParseLastTitleWins(t *testing.T) {
	plan := Parse("# First\n# Second\n")
	assert.Equal(t, "Second", plan.Title)
}

func TestParseEmptyDocument(t *testing.T) {
	plan := Parse("")
	assert.Empty(t, plan.Title)
	assert.Empty(t, plan.Tasks)
}

func TestParseTaskWithoutKeyDropped(t *testing.T) {
	plan := Parse("TASK:\nTITLE: nameless\n\nTASK: real\nTITLE: named\n")
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "real", plan.Tasks[0].StableKey)
}

func TestParseAcceptanceModeCloses(t *testing.T) {
	doc := `TASK: t1
ACCEPTANCE:
- first bullet

- second bullet
TITLE: closes the list
- not a bullet anymore
`
	plan := Parse(doc)
	require.Len(t, plan.Tasks, 1)
	// Blank lines keep the list open; TITLE closes it.
	assert.Equal(t, []string{"first bullet", "second bullet"}, plan.Tasks[0].Acceptance)
	assert.Equal(t, "closes the list", plan.Tasks[0].Title)
}

func TestParseRepeatedBlockedByAppends(t *testing.T) {
	doc := "TASK: t1\nBLOCKED_BY: a, b\nBLOCKED_BY: c\n"
	plan := Parse(doc)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, []string{"a", "b", "c"}, plan.Tasks[0].BlockedBy)
}

func TestParsePlanFileReadFailure(t *testing.T) {
	_, err := ParsePlanFile(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Equal(t, fault.FileReadFailed, fault.CodeOf(err))
}

func TestParsePlanFileOk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))
	plan, err := ParsePlanFile(path)
	require.NoError(t, err)
	assert.Len(t, plan.Tasks, 3)
}
