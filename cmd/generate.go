package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platotv/plato/app"
	"github.com/platotv/plato/config"
	"github.com/platotv/plato/core/model"
)

var (
	generatePlanID string
	generateMode   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation for a plan and print the result",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generatePlanID, "plan", "", "plan id")
	generateCmd.Flags().StringVar(&generateMode, "mode", string(model.ModeFull), "generation mode")
	_ = generateCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mode, err := model.ParseMode(generateMode)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Engine.Generate(context.Background(), generatePlanID, mode)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if res.Infeasible {
		if err := enc.Encode(map[string]any{"reasons": res.Reasons}); err != nil {
			return err
		}
		return fmt.Errorf("generation infeasible")
	}
	return enc.Encode(res)
}
