package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platotv/plato/app"
	"github.com/platotv/plato/config"
)

var etaPlanID string

var etaCmd = &cobra.Command{
	Use:   "eta",
	Short: "Print the completion estimate for a plan",
	RunE:  runEta,
}

func init() {
	etaCmd.Flags().StringVar(&etaPlanID, "plan", "", "plan id")
	_ = etaCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(etaCmd)
}

func runEta(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	est, err := svc.Engine.Estimate(context.Background(), etaPlanID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}
