package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
)

func samplePlan() *entities.LoadingPlan {
	return &entities.LoadingPlan{
		PlanDetails:  "3 consignments, 2 pickups, 3 drop-offs",
		Capacity:     25,
		TotalVolume:  10,
		CapacityUsed: 40,
		Items: []entities.LoadingPlanItem{
			{Name: "Oak for C", Volume: 5, WidthPercent: 20, LoadPosition: 1, Origin: "Mill", Destination: "C"},
			{Name: "Pine for B", Volume: 3, WidthPercent: 12, LoadPosition: 2, Origin: "Mill", Destination: "B"},
			{Name: "Ash for A", Volume: 2, WidthPercent: 8, LoadPosition: 3, Origin: "Mill", Destination: "A"},
		},
		Waypoints:   []entities.Waypoint{{Name: "Mill", Type: entities.WaypointPickup, Order: 0}},
		Diagnostics: []string{"Route narrative unavailable: <timeout>"},
	}
}

func TestTruckBar(t *testing.T) {
	bar := TruckBar(samplePlan(), 50)

	assert.Equal(t, "["+strings.Repeat("1", 10)+strings.Repeat("2", 6)+strings.Repeat("3", 4)+strings.Repeat(".", 30)+"]", bar)
}

func TestTruckBar_NeverOverflows(t *testing.T) {
	plan := &entities.LoadingPlan{Items: []entities.LoadingPlanItem{
		{WidthPercent: 60}, {WidthPercent: 60},
	}}

	bar := TruckBar(plan, 10)
	assert.Len(t, bar, 12)
}

func TestPlan_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Plan(samplePlan(), Config{Format: "text", Out: &buf}))

	out := buf.String()
	assert.Contains(t, out, "Used: 40.0%")
	assert.Contains(t, out, "Oak for C")
	assert.Contains(t, out, "Route narrative unavailable")
}

func TestPlan_JSONFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Plan(samplePlan(), Config{Format: "json", OutputDir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "loading_plan.json"))
	require.NoError(t, err)

	var decoded entities.LoadingPlan
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Items, 3)
	assert.Equal(t, 40.0, decoded.CapacityUsed)
}

func TestPlan_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Plan(samplePlan(), Config{Format: "svg", Out: &buf}))

	svg := buf.String()
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Equal(t, 3, strings.Count(svg, `class="item"`))
	assert.Contains(t, svg, "&lt;timeout&gt;")
}

func TestSuggestions_ReportsDropped(t *testing.T) {
	batch := interpreter.Batch[entities.MatchSuggestion]{
		Items:   []entities.MatchSuggestion{{DemandID: "D1", StockID: "S1", MatchStrength: entities.StrengthHigh, SimilarityScore: 0.9}},
		Dropped: 2,
	}

	var buf bytes.Buffer
	require.NoError(t, Suggestions(batch, Config{Format: "text", Out: &buf}))
	assert.Contains(t, buf.String(), "D1")
	assert.Contains(t, buf.String(), "2 suggestion(s) were incomplete")
}

func TestFailure_UsesUserMessage(t *testing.T) {
	var buf bytes.Buffer
	err := &interpreter.ParseError{Feature: "match suggestions", Kind: interpreter.KindDecode, RawPrefix: "Sorry", Err: errors.New("bad json")}

	Failure(err, Config{Out: &buf, Verbose: true})
	assert.Contains(t, buf.String(), interpreter.UserMessage(err))
	assert.Contains(t, buf.String(), "bad json")
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("text"))
	assert.NoError(t, ValidateFormat("svg"))
	assert.Error(t, ValidateFormat("csv"))
}
