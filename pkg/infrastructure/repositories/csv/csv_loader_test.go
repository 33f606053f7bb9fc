package csv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vsinha/timber/pkg/domain/entities"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadDemands(t *testing.T) {
	path := writeFile(t, "demands.csv", `id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes
D1,C1,Oak,20,30,4,10,,2024-05-01,kiln dried
D2,C2,Spruce,15,20,5,40,processing,2024-05-02,
`)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	loader := &Loader{now: func() time.Time { return fixed }}

	demands, err := loader.LoadDemands(path)
	if err != nil {
		t.Fatalf("LoadDemands failed: %v", err)
	}
	if len(demands) != 2 {
		t.Fatalf("Expected 2 demands, got %d", len(demands))
	}

	d1 := demands[0]
	if d1.Status != entities.DemandReceived {
		t.Errorf("Expected RECEIVED, got %s", d1.Status)
	}
	if d1.CubicVolume != 1.963 {
		t.Errorf("Expected volume 1.963, got %g", d1.CubicVolume)
	}
	if d1.Notes != "kiln dried" {
		t.Errorf("Expected notes 'kiln dried', got %q", d1.Notes)
	}
	if demands[1].Status != entities.DemandProcessing {
		t.Errorf("Expected PROCESSING, got %s", demands[1].Status)
	}
}

func TestLoadStock(t *testing.T) {
	path := writeFile(t, "stock.csv", `id,company_id,product,diameter_from,diameter_to,length,quantity,price,sustainability,status,uploaded_at
S1,M1,Oak,20,30,4,100,20 EUR/unit,FSC,,
`)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	loader := &Loader{now: func() time.Time { return fixed }}

	stock, err := loader.LoadStock(path)
	if err != nil {
		t.Fatalf("LoadStock failed: %v", err)
	}
	if len(stock) != 1 {
		t.Fatalf("Expected 1 stock record, got %d", len(stock))
	}
	if stock[0].Price != "20 EUR/unit" {
		t.Errorf("Expected price '20 EUR/unit', got %q", stock[0].Price)
	}
	if stock[0].Status != entities.StockAvailable {
		t.Errorf("Expected AVAILABLE, got %s", stock[0].Status)
	}
	if !stock[0].UploadedAt.Equal(fixed) {
		t.Errorf("Expected uploaded_at %v, got %v", fixed, stock[0].UploadedAt)
	}
}

func TestLoadCompanies(t *testing.T) {
	path := writeFile(t, "companies.csv", `id,name,role,street,city,country,lat,long
M1,Sawmill North,manufacturer,Hafenstr. 1,Hamburg,DE,53.55,9.99
C1,Joinery A,Customer,,Berlin,DE,,
`)

	companies, err := NewLoader().LoadCompanies(path)
	if err != nil {
		t.Fatalf("LoadCompanies failed: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("Expected 2 companies, got %d", len(companies))
	}
	if companies[0].Address.Lat == nil || *companies[0].Address.Lat != 53.55 {
		t.Errorf("Expected lat 53.55, got %v", companies[0].Address.Lat)
	}
	if companies[1].Role != entities.RoleCustomer {
		t.Errorf("Expected customer role, got %s", companies[1].Role)
	}
	if companies[1].Address.Long != nil {
		t.Errorf("Expected no longitude, got %v", *companies[1].Address.Long)
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"header only", "id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes\n"},
		{"wrong header", "id,company,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes\nD1,C1,Oak,20,30,4,10,,,\n"},
		{"bad number", "id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes\nD1,C1,Oak,x,30,4,10,,,\n"},
		{"inverted diameters", "id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes\nD1,C1,Oak,40,30,4,10,,,\n"},
		{"bad status", "id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes\nD1,C1,Oak,20,30,4,10,lost,,\n"},
		{"bad date", "id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes\nD1,C1,Oak,20,30,4,10,,01/05/2024,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "demands.csv", tt.content)
			if _, err := NewLoader().LoadDemands(path); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}

	if _, err := NewLoader().LoadDemands(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}
