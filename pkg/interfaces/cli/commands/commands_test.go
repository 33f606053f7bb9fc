package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/timber/pkg/application/services/interpreter"
	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

const (
	demandsCSV = `id,company_id,product,diameter_from,diameter_to,length,quantity,status,submitted_at,notes
D1,C1,Oak,20,30,4,10,,2024-05-01,
`
	stockCSV = `id,company_id,product,diameter_from,diameter_to,length,quantity,price,sustainability,status,uploaded_at
S1,M1,Oak,20,30,4,100,20 EUR/unit,FSC,,2024-05-01
`
	companiesCSV = `id,name,role,street,city,country,lat,long
C1,Joinery A,customer,,Berlin,DE,,
M1,Sawmill North,manufacturer,,Hamburg,DE,,
`
)

// setupEnv points the CLI at a fresh SQLite file with no AI key
func setupEnv(t *testing.T) (configPath, scenarioDir string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TIMBER_STORE", "sqlite")
	t.Setenv("TIMBER_DB", filepath.Join(dir, "timber.db"))

	scenarioDir = filepath.Join(dir, "scenario")
	require.NoError(t, os.MkdirAll(scenarioDir, 0755))
	for name, content := range map[string]string{
		"demands.csv":   demandsCSV,
		"stock.csv":     stockCSV,
		"companies.csv": companiesCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(scenarioDir, name), []byte(content), 0644))
	}
	return filepath.Join(dir, "timber.yaml"), scenarioDir
}

func runCLI(t *testing.T, generator ai.Generator, configPath string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	deps := Dependencies{Generator: generator, Logger: zaptest.NewLogger(t), Out: &buf}
	root, c := newRootCommand(deps)
	err := c.execute(context.Background(), root, append([]string{"--config", configPath}, args...))
	return buf.String(), err
}

func TestCLI_MatchLifecycle(t *testing.T) {
	configPath, scenarioDir := setupEnv(t)
	generator := ai.NewScripted(
		ai.Text(`[{"demandId":"D1","stockId":"S1","reason":"same species and size","matchStrength":"High","similarityScore":0.9},
		          {"demandId":"D1","stockId":"S9","reason":"unknown stock","matchStrength":"Low","similarityScore":0.1}]`),
	)

	out, err := runCLI(t, generator, configPath, "import", "--scenario", scenarioDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 demands, 1 stock listings, 2 companies")

	out, err = runCLI(t, generator, configPath, "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "same species and size")
	assert.Contains(t, out, "1 suggestion(s) were incomplete")

	out, err = runCLI(t, generator, configPath, "confirm", "D1", "S1", "--reason", "same species and size")
	require.NoError(t, err)
	assert.Contains(t, out, "Commission: 100.00")

	_, err = runCLI(t, generator, configPath, "confirm", "D1", "S1")
	assert.True(t, errors.Is(err, entities.ErrAlreadyMatched), "expected ErrAlreadyMatched, got %v", err)

	out, err = runCLI(t, generator, configPath, "stock", "--all", "--format", "json")
	require.NoError(t, err)
	var stock []*entities.StockRecord
	require.NoError(t, json.Unmarshal([]byte(out), &stock))
	require.Len(t, stock, 1)
	assert.Equal(t, entities.StockReserved, stock[0].Status)

	out, err = runCLI(t, generator, configPath, "matches", "--format", "json")
	require.NoError(t, err)
	var matches []*entities.ConfirmedMatch
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)

	_, err = runCLI(t, generator, configPath, "bill", matches[0].ID)
	require.NoError(t, err)
	_, err = runCLI(t, generator, configPath, "bill", matches[0].ID)
	assert.True(t, errors.Is(err, entities.ErrInvalidTransition), "expected ErrInvalidTransition, got %v", err)
}

func TestCLI_PlanWithDemoData(t *testing.T) {
	configPath, scenarioDir := setupEnv(t)

	_, err := runCLI(t, nil, configPath, "import", "--scenario", scenarioDir)
	require.NoError(t, err)
	_, err = runCLI(t, nil, configPath, "confirm", "D1", "S1")
	require.NoError(t, err)

	_, err = runCLI(t, nil, configPath, "plan", "--skip-route")
	assert.True(t, errors.Is(err, entities.ErrInsufficientData), "expected ErrInsufficientData, got %v", err)

	out, err := runCLI(t, nil, configPath, "plan", "--allow-mock", "--format", "json")
	require.NoError(t, err)

	var plan entities.LoadingPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Len(t, plan.Items, 2)
	assert.LessOrEqual(t, plan.TotalWidthPercent(), 100.0)
	require.Len(t, plan.Diagnostics, 2)
	assert.Contains(t, plan.Diagnostics[0], "Demo data")
	assert.Contains(t, plan.Diagnostics[1], "Route narrative unavailable")
}

func TestCLI_SuggestWithoutAI(t *testing.T) {
	configPath, _ := setupEnv(t)

	_, err := runCLI(t, nil, configPath, "suggest")
	assert.True(t, errors.Is(err, interpreter.ErrAIUnavailable), "expected ErrAIUnavailable, got %v", err)
	assert.Equal(t, interpreter.FailurePrecondition, interpreter.Classify(err))
}

func TestCLI_SubmitValidatesInput(t *testing.T) {
	configPath, _ := setupEnv(t)

	_, err := runCLI(t, nil, configPath, "submit", "--company", "C1", "--product", "Oak", "--from", "30", "--to", "20", "--length", "4", "--qty", "5")
	assert.True(t, errors.Is(err, entities.ErrInvalidInput), "expected ErrInvalidInput, got %v", err)

	out, err := runCLI(t, nil, configPath, "submit", "--company", "C1", "--product", "Oak", "--from", "20", "--to", "30", "--length", "4", "--qty", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "1.963")
	assert.Contains(t, out, "RECEIVED")
}

func TestCLI_Volume(t *testing.T) {
	configPath, _ := setupEnv(t)

	out, err := runCLI(t, nil, configPath, "volume", "--from", "20", "--to", "30", "--length", "4", "--qty", "10")
	require.NoError(t, err)
	assert.Equal(t, "1.963 m³\n", out)
}

func TestCLI_RejectsUnknownFormat(t *testing.T) {
	configPath, _ := setupEnv(t)

	_, err := runCLI(t, nil, configPath, "demands", "--format", "xml")
	assert.Error(t, err)
}

func TestResolveImportFiles(t *testing.T) {
	_, scenarioDir := setupEnv(t)

	files, err := resolveImportFiles(scenarioDir, importFiles{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(scenarioDir, "stock.csv"), files.Stock)

	_, err = resolveImportFiles("", importFiles{})
	assert.True(t, errors.Is(err, entities.ErrInvalidInput))

	_, err = resolveImportFiles("", importFiles{Demands: filepath.Join(scenarioDir, "missing.csv")})
	assert.Error(t, err)
}

func TestCLI_ImportRejectsRoleMismatch(t *testing.T) {
	configPath, scenarioDir := setupEnv(t)
	badStock := `id,company_id,product,diameter_from,diameter_to,length,quantity,price,sustainability,status,uploaded_at
S1,C1,Oak,20,30,4,100,20 EUR/unit,,,
`
	require.NoError(t, os.WriteFile(filepath.Join(scenarioDir, "stock.csv"), []byte(badStock), 0644))

	_, err := runCLI(t, nil, configPath, "import", "--scenario", scenarioDir)
	assert.True(t, errors.Is(err, entities.ErrInvalidInput), "expected ErrInvalidInput, got %v", err)

	out, err := runCLI(t, nil, configPath, "demands", "--all", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
