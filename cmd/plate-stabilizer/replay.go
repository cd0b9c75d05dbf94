package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"plate-stabilizer/internal/capture"
	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/pipeline"
	"plate-stabilizer/internal/service"
	"plate-stabilizer/internal/store"
	"plate-stabilizer/internal/validation"
)

func runReplay(cmd *cobra.Command, args []string) error {
	in := io.Reader(cmd.InOrStdin())
	if replayInput != "-" {
		f, err := os.Open(replayInput)
		if err != nil {
			return fmt.Errorf("open frames: %w", err)
		}
		defer f.Close()
		in = f
	}

	filter, err := validation.NewSettings(cfg.FilterSettings())
	if err != nil {
		return err
	}
	plates := service.NewPlateService(store.New(), filter, validation.NewValidator(log), nil, log)

	progress := pipeline.SinkFunc(func(e plate.Event) {
		if e.Type == plate.EventAccepted {
			log.Info().Int64("frame", e.Frame).Str("plate", e.Text).Msg("plate saved")
		}
	})
	worker, err := pipeline.NewWorker(cfg.PipelineSettings(), plates, progress, log)
	if err != nil {
		return err
	}
	if err := worker.Run(cmd.Context(), capture.NewReplaySource(in)); err != nil {
		return err
	}

	out := io.Writer(cmd.OutOrStdout())
	if replayOutput != "-" {
		f, err := os.Create(replayOutput)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plates.Export()); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	log.Info().
		Int64("frames", worker.Processed()).
		Int("plates", len(plates.Saved())).
		Msg("replay finished")
	return nil
}
