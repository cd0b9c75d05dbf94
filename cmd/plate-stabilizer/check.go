package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/service"
	"plate-stabilizer/internal/store"
	"plate-stabilizer/internal/validation"
)

func runCheck(cmd *cobra.Command, args []string) error {
	filterCfg := cfg.FilterSettings()
	if cmd.Flags().Changed("pattern") {
		filterCfg.ActivePattern = plate.PatternName(checkPattern)
	}
	if cmd.Flags().Changed("custom") {
		filterCfg.CustomExpression = checkCustom
	}
	if cmd.Flags().Changed("multi") {
		filterCfg.MultiPatternMode = checkMulti
	}

	filter, err := validation.NewSettings(cfg.FilterSettings())
	if err != nil {
		return err
	}
	plates := service.NewPlateService(store.New(), filter, validation.NewValidator(log), nil, log)

	report, err := plates.Check(args[0], &filterCfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
