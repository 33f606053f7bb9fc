package loading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func basePlan(t *testing.T) *entities.LoadingPlan {
	t.Helper()
	plan, err := NewSequencer(25).Sequence(threeMatches(), testDirectory())
	require.NoError(t, err)
	return plan
}

func newAdvisor(replies ...ai.Reply) (*RouteAdvisor, *ai.Scripted) {
	gen := ai.NewScripted(replies...)
	return NewRouteAdvisor(interpreter.New(gen, time.Second, nil), nil), gen
}

func TestAdvise_ReordersDropOffs(t *testing.T) {
	reply := "```json\n" + `{
		"optimizedRouteDescription": "Start in the north, deliver C before B and finish at A.",
		"waypoints": [
			{"name": "Sawmill North", "type": "pickup", "order": 0},
			{"name": "joinery c", "type": "dropoff", "order": 1},
			{"name": "Joinery B", "type": "dropoff", "order": 2},
			{"name": "Joinery A", "type": "dropoff", "order": 5}
		]
	}` + "\n```"
	advisor, gen := newAdvisor(ai.Text(reply))
	plan := basePlan(t)

	advised, err := advisor.Advise(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, "Start in the north, deliver C before B and finish at A.", advised.OptimizedRouteDescription)

	expected := []entities.Waypoint{
		{CompanyID: "M1", Name: "Sawmill North", Type: entities.WaypointPickup, Order: 0},
		{CompanyID: "C3", Name: "Joinery C", Type: entities.WaypointDropoff, Order: 1},
		{CompanyID: "C2", Name: "Joinery B", Type: entities.WaypointDropoff, Order: 2},
		{CompanyID: "C1", Name: "Joinery A", Type: entities.WaypointDropoff, Order: 3},
	}
	if diff := cmp.Diff(expected, advised.Waypoints); diff != "" {
		t.Errorf("waypoints mismatch (-want +got):\n%s", diff)
	}

	// Joinery A is now the last drop-off, so its item is loaded first
	assert.Equal(t, "m1", advised.Items[0].MatchID)
	assert.Equal(t, 3, advised.Items[0].DropOffOrder)
	assert.Equal(t, "m3", advised.Items[2].MatchID)
	assert.Equal(t, 1, advised.Items[2].DropOffOrder)
	assert.Equal(t, "Joinery C", advised.Dropoffs[0].Name)

	// The input plan is untouched
	assert.Equal(t, "m3", plan.Items[0].MatchID)
	assert.Empty(t, plan.OptimizedRouteDescription)

	assert.True(t, gen.Calls()[0].Opts.StructuredOutput)
	assert.Contains(t, gen.Calls()[0].Prompt, "Sawmill North [id=M1] (Hamburg)")
}

func TestAdvise_DropsUnknownAndAppendsMissingStops(t *testing.T) {
	reply := `{"optimizedRouteDescription":"Short hop.","waypoints":[
		{"name":"Joinery B","type":"dropoff"},
		{"name":"Nowhere","type":"dropoff"},
		{"name":"Joinery B","type":"dropoff"},
		{"name":"Sawmill North","type":"dropoff"}
	]}`
	advisor, _ := newAdvisor(ai.Text(reply))

	advised, err := advisor.Advise(context.Background(), basePlan(t))
	require.NoError(t, err)

	names := make([]string, len(advised.Waypoints))
	for i, wp := range advised.Waypoints {
		names[i] = wp.Name
		assert.Equal(t, i, wp.Order)
	}
	assert.Equal(t, []string{"Joinery B", "Sawmill North", "Joinery A", "Joinery C"}, names)
}

func TestAdvise_SharedNamesResolveByCompany(t *testing.T) {
	dir := NewDirectory([]*entities.Company{
		{ID: "M1", Name: "Sawmill North", Role: entities.RoleManufacturer},
		{ID: "C1", Name: "Joinery", Role: entities.RoleCustomer},
		{ID: "C2", Name: "Joinery", Role: entities.RoleCustomer},
	})
	plan, err := NewSequencer(25).Sequence([]*entities.ConfirmedMatch{
		testMatch("m1", "M1", "C1", 5, 0),
		testMatch("m2", "M1", "C2", 3, 1),
	}, dir)
	require.NoError(t, err)

	tests := []struct {
		name  string
		reply string
	}{
		{"by company id", `{"waypoints":[
			{"companyId":"M1","name":"Sawmill North","type":"pickup"},
			{"companyId":"C2","name":"Joinery","type":"dropoff"},
			{"companyId":"C1","name":"Joinery","type":"dropoff"}
		]}`},
		{"by rank with ids", `{"waypoints":[
			{"companyId":"C1","name":"Joinery","type":"dropoff","order":2},
			{"companyId":"C2","name":"Joinery","type":"dropoff","order":1},
			{"companyId":"M1","name":"Sawmill North","type":"pickup","order":0}
		]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor, _ := newAdvisor(ai.Text(tt.reply))
			advised, err := advisor.Advise(context.Background(), plan)
			require.NoError(t, err)

			ids := make([]string, len(advised.Waypoints))
			for i, wp := range advised.Waypoints {
				ids[i] = wp.CompanyID
			}
			assert.Equal(t, []string{"M1", "C2", "C1"}, ids)
			assert.Equal(t, "C2", advised.Dropoffs[0].CompanyID)

			orders := map[string]int{}
			for _, item := range advised.Items {
				orders[item.MatchID] = item.DropOffOrder
			}
			assert.Equal(t, map[string]int{"m1": 2, "m2": 1}, orders)
			assert.Equal(t, "m1", advised.Items[0].MatchID)
		})
	}
}

func TestAdvise_SharedNamesWithoutIdsKeepBothStops(t *testing.T) {
	dir := NewDirectory([]*entities.Company{
		{ID: "M1", Name: "Sawmill North", Role: entities.RoleManufacturer},
		{ID: "C1", Name: "Joinery", Role: entities.RoleCustomer},
		{ID: "C2", Name: "Joinery", Role: entities.RoleCustomer},
	})
	plan, err := NewSequencer(25).Sequence([]*entities.ConfirmedMatch{
		testMatch("m1", "M1", "C1", 5, 0),
		testMatch("m2", "M1", "C2", 3, 1),
	}, dir)
	require.NoError(t, err)

	advisor, _ := newAdvisor(ai.Text(`{"waypoints":[
		{"name":"Sawmill North","type":"pickup"},
		{"name":"Joinery","type":"dropoff"},
		{"name":"Joinery","type":"dropoff"}
	]}`))
	advised, err := advisor.Advise(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, advised.Waypoints, 3)
	assert.Equal(t, "C1", advised.Waypoints[1].CompanyID)
	assert.Equal(t, "C2", advised.Waypoints[2].CompanyID)

	// Each item keeps the rank of its own drop-off
	for _, item := range advised.Items {
		switch item.MatchID {
		case "m1":
			assert.Equal(t, 1, item.DropOffOrder)
		case "m2":
			assert.Equal(t, 2, item.DropOffOrder)
		}
	}
}

func TestAdvise_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply ai.Reply
		kind  interpreter.FailureKind
	}{
		{"transport", ai.Reply{Err: errors.New("503")}, interpreter.FailureTransport},
		{"decode", ai.Text("Drive north, then south."), interpreter.FailureDecode},
		{"shape", ai.Text(`[{"name":"Joinery A"}]`), interpreter.FailureShape},
		{"no waypoints", ai.Text(`{"optimizedRouteDescription":"x","waypoints":[]}`), interpreter.FailureInvalid},
		{"all unknown", ai.Text(`{"waypoints":[{"name":"Atlantis","type":"pickup"}]}`), interpreter.FailureInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor, _ := newAdvisor(tt.reply)
			_, err := advisor.Advise(context.Background(), basePlan(t))
			if got := interpreter.Classify(err); got != tt.kind {
				t.Errorf("Expected %s, got %s (%v)", tt.kind, got, err)
			}
		})
	}
}

func TestAdvise_RequiresGenerator(t *testing.T) {
	advisor := NewRouteAdvisor(interpreter.New(nil, 0, nil), nil)
	assert.False(t, advisor.Available())

	_, err := advisor.Advise(context.Background(), basePlan(t))
	assert.ErrorIs(t, err, interpreter.ErrAIUnavailable)
}
