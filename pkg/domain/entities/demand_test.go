package entities

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func testSpec() TimberSpec {
	return TimberSpec{Product: "Pine logs", DiameterFrom: 10, DiameterTo: 10, Length: 2, Quantity: 1}
}

func TestNewDemandRecord(t *testing.T) {
	submitted := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	demand, err := NewDemandRecord("D1", "C1", testSpec(), submitted)
	if err != nil {
		t.Fatalf("Expected valid demand creation to succeed: %v", err)
	}
	if demand.Status != DemandReceived {
		t.Errorf("Expected status RECEIVED, got %s", demand.Status)
	}
	if demand.CubicVolume != 0.016 {
		t.Errorf("Expected derived volume 0.016, got %v", demand.CubicVolume)
	}

	if _, err := NewDemandRecord("", "C1", testSpec(), submitted); err == nil {
		t.Error("Expected error for empty id")
	}
	if _, err := NewDemandRecord("D1", "", testSpec(), submitted); err == nil {
		t.Error("Expected error for empty company")
	}
}

func TestDemandRecord_TransitionTo(t *testing.T) {
	testCases := []struct {
		from    DemandStatus
		to      DemandStatus
		allowed bool
	}{
		{DemandReceived, DemandProcessing, true},
		{DemandReceived, DemandCancelled, true},
		{DemandReceived, DemandCompleted, false},
		{DemandProcessing, DemandCompleted, true},
		{DemandProcessing, DemandCancelled, false},
		{DemandProcessing, DemandReceived, false},
		{DemandCompleted, DemandProcessing, false},
		{DemandCancelled, DemandReceived, false},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String()+"_to_"+tc.to.String(), func(t *testing.T) {
			demand := &DemandRecord{ID: "D1", Status: tc.from}
			err := demand.TransitionTo(tc.to)
			if tc.allowed {
				if err != nil {
					t.Fatalf("Expected transition to succeed: %v", err)
				}
				if demand.Status != tc.to {
					t.Errorf("Expected status %s, got %s", tc.to, demand.Status)
				}
				return
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Expected ErrInvalidTransition, got %v", err)
			}
			if demand.Status != tc.from {
				t.Errorf("Expected status to stay %s, got %s", tc.from, demand.Status)
			}
		})
	}
}

func TestDemandStatus_JSON(t *testing.T) {
	demand := &DemandRecord{ID: "D1", TimberSpec: testSpec(), Status: DemandProcessing, CompanyID: "C1"}

	data, err := json.Marshal(demand)
	if err != nil {
		t.Fatalf("Failed to marshal demand: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to decode demand JSON: %v", err)
	}
	if raw["status"] != "PROCESSING" {
		t.Errorf("Expected status name in JSON, got %v", raw["status"])
	}
	if raw["product"] != "Pine logs" {
		t.Errorf("Expected flattened product field, got %v", raw["product"])
	}

	var status DemandStatus
	if err := status.UnmarshalText([]byte("BOGUS")); err == nil {
		t.Error("Expected error for unknown status name")
	}
}

func TestDemandRecord_CloneIsIndependent(t *testing.T) {
	original := &DemandRecord{ID: "D1", TimberSpec: testSpec(), Status: DemandReceived}
	clone := original.Clone()
	clone.Status = DemandProcessing
	clone.Quantity = 99

	if original.Status != DemandReceived || original.Quantity != 1 {
		t.Errorf("Expected original to be unaffected by clone mutation, got %+v", original)
	}
}
