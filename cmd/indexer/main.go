package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/config"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/indexer"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║        GnosisPayIndexor v%s            ║
║     Gnosis Pay Cashback Indexer           ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "GnosisPayIndexor - Gnosis Pay cashback indexer",
	Long: `GnosisPayIndexor follows Gnosis Chain and indexes Gnosis Pay card spends, refunds,
GNO balance changes and cashback payouts into weekly per-Safe reward aggregates.
It serves the aggregates over a read API and publishes new transactions to NATS.`,
	Version: version,
	RunE:    runIndexer,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the payment token registry",
	Long:  `List the payment tokens seeded at bootstrap, from the configuration file or the built-in registry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
		fmt.Fprintln(w, "SYMBOL\tADDRESS\tDECIMALS\tORACLE")
		for _, t := range indexer.RegistryTokens(cfg.TokenRegistry(), cfg.Indexer.ChainID) {
			oracle := "fixed 1 USD"
			if t.OracleAddress != nil {
				oracle = t.OracleAddress.Hex()
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Symbol, t.Address.Hex(), t.Decimals, oracle)
		}
		return w.Flush()
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.JSONSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(tokensCmd, schemaCmd)
}
