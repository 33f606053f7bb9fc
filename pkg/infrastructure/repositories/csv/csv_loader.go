package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// Loader handles loading marketplace data from CSV files
type Loader struct {
	now func() time.Time
}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{now: time.Now}
}

var (
	demandHeader  = []string{"id", "company_id", "product", "diameter_from", "diameter_to", "length", "quantity", "status", "submitted_at", "notes"}
	stockHeader   = []string{"id", "company_id", "product", "diameter_from", "diameter_to", "length", "quantity", "price", "sustainability", "status", "uploaded_at"}
	companyHeader = []string{"id", "name", "role", "street", "city", "country", "lat", "long"}
)

// LoadDemands loads demand records from a CSV file.
// Empty status defaults to RECEIVED and empty submitted_at to now.
func (l *Loader) LoadDemands(filename string) ([]*entities.DemandRecord, error) {
	rows, err := readRecords(filename, "demands", demandHeader)
	if err != nil {
		return nil, err
	}

	var demands []*entities.DemandRecord
	for i, record := range rows {
		demand, err := l.parseDemand(record)
		if err != nil {
			return nil, fmt.Errorf("demands CSV row %d: %w", i+2, err)
		}
		demands = append(demands, demand)
	}

	return demands, nil
}

// LoadStock loads stock listings from a CSV file.
// Empty status defaults to AVAILABLE and empty uploaded_at to now.
func (l *Loader) LoadStock(filename string) ([]*entities.StockRecord, error) {
	rows, err := readRecords(filename, "stock", stockHeader)
	if err != nil {
		return nil, err
	}

	var stock []*entities.StockRecord
	for i, record := range rows {
		item, err := l.parseStock(record)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		stock = append(stock, item)
	}

	return stock, nil
}

// LoadCompanies loads the company directory from a CSV file
func (l *Loader) LoadCompanies(filename string) ([]*entities.Company, error) {
	rows, err := readRecords(filename, "companies", companyHeader)
	if err != nil {
		return nil, err
	}

	var companies []*entities.Company
	for i, record := range rows {
		company, err := parseCompany(record)
		if err != nil {
			return nil, fmt.Errorf("companies CSV row %d: %w", i+2, err)
		}
		companies = append(companies, company)
	}

	return companies, nil
}

// readRecords opens filename, validates the header and returns the data rows
func readRecords(filename, name string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseSpec(product, from, to, length, quantity string) (entities.TimberSpec, error) {
	diameterFrom, err := strconv.ParseFloat(from, 64)
	if err != nil {
		return entities.TimberSpec{}, fmt.Errorf("invalid diameter_from: %s", from)
	}
	diameterTo, err := strconv.ParseFloat(to, 64)
	if err != nil {
		return entities.TimberSpec{}, fmt.Errorf("invalid diameter_to: %s", to)
	}
	lengthM, err := strconv.ParseFloat(length, 64)
	if err != nil {
		return entities.TimberSpec{}, fmt.Errorf("invalid length: %s", length)
	}
	qty, err := strconv.ParseInt(quantity, 10, 64)
	if err != nil {
		return entities.TimberSpec{}, fmt.Errorf("invalid quantity: %s", quantity)
	}

	return entities.TimberSpec{
		Product:      product,
		DiameterFrom: diameterFrom,
		DiameterTo:   diameterTo,
		Length:       lengthM,
		Quantity:     entities.Quantity(qty),
	}, nil
}

func (l *Loader) parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return l.now(), nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %s (expected YYYY-MM-DD)", field, value)
	}
	return date, nil
}

func (l *Loader) parseDemand(record []string) (*entities.DemandRecord, error) {
	spec, err := parseSpec(record[2], record[3], record[4], record[5], record[6])
	if err != nil {
		return nil, err
	}
	submittedAt, err := l.parseDate("submitted_at", record[8])
	if err != nil {
		return nil, err
	}

	demand, err := entities.NewDemandRecord(record[0], record[1], spec, submittedAt)
	if err != nil {
		return nil, err
	}
	if record[7] != "" {
		if err := demand.Status.UnmarshalText([]byte(strings.ToUpper(record[7]))); err != nil {
			return nil, err
		}
	}
	demand.Notes = record[9]
	return demand, nil
}

func (l *Loader) parseStock(record []string) (*entities.StockRecord, error) {
	spec, err := parseSpec(record[2], record[3], record[4], record[5], record[6])
	if err != nil {
		return nil, err
	}
	uploadedAt, err := l.parseDate("uploaded_at", record[10])
	if err != nil {
		return nil, err
	}

	stock, err := entities.NewStockRecord(record[0], record[1], spec, record[7], record[8], uploadedAt)
	if err != nil {
		return nil, err
	}
	if record[9] != "" {
		if err := stock.Status.UnmarshalText([]byte(strings.ToUpper(record[9]))); err != nil {
			return nil, err
		}
	}
	return stock, nil
}

func parseCompany(record []string) (*entities.Company, error) {
	address := entities.Address{
		Street:  record[3],
		City:    record[4],
		Country: record[5],
	}

	var err error
	if address.Lat, err = parseCoordinate("lat", record[6]); err != nil {
		return nil, err
	}
	if address.Long, err = parseCoordinate("long", record[7]); err != nil {
		return nil, err
	}

	return entities.NewCompany(record[0], record[1], entities.CompanyRole(strings.ToLower(record[2])), address)
}

func parseCoordinate(field, value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", field, value)
	}
	return &f, nil
}
