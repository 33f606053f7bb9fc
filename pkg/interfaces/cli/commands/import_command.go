package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/timber/pkg/domain/entities"
	"github.com/vsinha/timber/pkg/domain/services"
)

// importFiles names the CSV inputs of an import; empty paths are skipped
type importFiles struct {
	Demands   string
	Stock     string
	Companies string
}

func (c *cli) importCommand() *cobra.Command {
	var scenarioDir string
	var files importFiles

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import demands, stock and companies from CSV files",
		Long: `Loads CSV files into the store. Records are merged by ID, so
re-importing a file replaces the earlier rows.

With --scenario DIR the files demands.csv, stock.csv and companies.csv are
read from DIR when present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveImportFiles(scenarioDir, files)
			if err != nil {
				return err
			}
			return c.runImport(cmd, resolved)
		},
	}
	cmd.Flags().StringVar(&scenarioDir, "scenario", "", "Directory containing demands.csv, stock.csv and companies.csv")
	cmd.Flags().StringVar(&files.Demands, "demands", "", "Path to demands CSV file")
	cmd.Flags().StringVar(&files.Stock, "stock", "", "Path to stock CSV file")
	cmd.Flags().StringVar(&files.Companies, "companies", "", "Path to companies CSV file")
	return cmd
}

// resolveImportFiles fills unset paths from the scenario directory and checks they exist
func resolveImportFiles(scenarioDir string, files importFiles) (importFiles, error) {
	if scenarioDir != "" {
		fromDir := func(current, name string) string {
			if current != "" {
				return current
			}
			path := filepath.Join(scenarioDir, name)
			if _, err := os.Stat(path); err != nil {
				return ""
			}
			return path
		}
		files.Demands = fromDir(files.Demands, "demands.csv")
		files.Stock = fromDir(files.Stock, "stock.csv")
		files.Companies = fromDir(files.Companies, "companies.csv")
	}

	if files.Demands == "" && files.Stock == "" && files.Companies == "" {
		return files, fmt.Errorf("%w: no CSV files to import", entities.ErrInvalidInput)
	}

	for name, path := range map[string]string{"Demands": files.Demands, "Stock": files.Stock, "Companies": files.Companies} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return files, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// runImport parses the files concurrently and stores them once all parsed cleanly
func (c *cli) runImport(cmd *cobra.Command, files importFiles) error {
	var (
		demands   []*entities.DemandRecord
		stock     []*entities.StockRecord
		companies []*entities.Company
	)

	g := new(errgroup.Group)
	if files.Demands != "" {
		g.Go(func() error {
			var err error
			demands, err = c.app.Loader.LoadDemands(files.Demands)
			if err != nil {
				return fmt.Errorf("error loading demands: %w", err)
			}
			return nil
		})
	}
	if files.Stock != "" {
		g.Go(func() error {
			var err error
			stock, err = c.app.Loader.LoadStock(files.Stock)
			if err != nil {
				return fmt.Errorf("error loading stock: %w", err)
			}
			return nil
		})
	}
	if files.Companies != "" {
		g.Go(func() error {
			var err error
			companies, err = c.app.Loader.LoadCompanies(files.Companies)
			if err != nil {
				return fmt.Errorf("error loading companies: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := c.validateImport(ctx, companies, demands, stock); err != nil {
		return err
	}

	if len(companies) > 0 {
		if err := c.app.Repo.LoadCompanies(ctx, companies); err != nil {
			return fmt.Errorf("failed to store companies: %w", err)
		}
	}
	if len(demands) > 0 {
		if err := c.app.Repo.LoadDemands(ctx, demands); err != nil {
			return fmt.Errorf("failed to store demands: %w", err)
		}
	}
	if len(stock) > 0 {
		if err := c.app.Repo.LoadStock(ctx, stock); err != nil {
			return fmt.Errorf("failed to store stock: %w", err)
		}
	}

	c.logger.Info("import finished",
		zap.Int("demands", len(demands)),
		zap.Int("stock", len(stock)),
		zap.Int("companies", len(companies)))

	fmt.Fprintf(c.deps.Out, "✅ Imported %d demands, %d stock listings, %d companies\n", len(demands), len(stock), len(companies))
	return nil
}

// validateImport checks the parsed rows against the stored company directory
func (c *cli) validateImport(ctx context.Context, companies []*entities.Company, demands []*entities.DemandRecord, stock []*entities.StockRecord) error {
	stored, err := c.app.Repo.GetCompanies(ctx)
	if err != nil {
		return fmt.Errorf("failed to load companies: %w", err)
	}

	directory := append([]*entities.Company(nil), companies...)
	imported := make(map[string]bool, len(companies))
	for _, company := range companies {
		imported[company.ID] = true
	}
	for _, company := range stored {
		if !imported[company.ID] {
			directory = append(directory, company)
		}
	}

	result := services.NewMarketValidator().ValidateImport(directory, demands, stock)
	for _, warning := range result.Warnings {
		c.logger.Warn("import validation", zap.String("warning", warning))
		if c.verbose {
			fmt.Fprintf(c.deps.Out, "⚠️  %s\n", warning)
		}
	}
	if !result.IsValid() {
		return fmt.Errorf("%w: %s", entities.ErrInvalidInput, strings.Join(result.Errors, "; "))
	}
	return nil
}
