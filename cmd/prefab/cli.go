package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"prefab/internal/gds"
	"prefab/internal/geom"
	"prefab/internal/imgio"
	"prefab/internal/predictor"
	"prefab/internal/registry"
)

func defaultModelsDir() string {
	if v := os.Getenv("PREFAB_MODELS_DIR"); v != "" {
		return v
	}
	return "~/models/prefab"
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prefab",
		Short:         "Predict fabrication outcomes for device layout images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newModelsCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newExportCmd())
	return root
}

func newModelsCmd() *cobra.Command {
	var modelsDir string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List ensemble weights found in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := registry.LoadDir(modelsDir)
			if err != nil {
				return err
			}
			// Group member counts per ensemble id.
			counts := map[string]int{}
			for _, m := range models {
				counts[m.ID]++
			}
			ids := make([]string, 0, len(counts))
			for id := range counts {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tmembers=%d\n", id, counts[id])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelsDir, "models-dir", defaultModelsDir(), "directory to scan for *.onnx weights")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var (
		modelsDir    string
		model        string
		nums         []int
		imagePath    string
		deviceLength float64
		resolution   float64
		step         int
		binary       bool
		outPath      string
		uncPath      string
		tileSize     int
		onnxLib      string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run an ensemble prediction over a device layout image",
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := imgio.LoadDeviceImage(imagePath, deviceLength, resolution)
			if err != nil {
				return err
			}
			models, err := registry.LoadDir(modelsDir)
			if err != nil {
				return err
			}
			svc := predictor.NewService(predictor.ServiceConfig{
				Registry: models,
				TileSize: tileSize,
				Runtime:  &predictor.ONNXRuntime{LibraryPath: onnxLib},
			})
			defer svc.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pred, err := svc.Predict(ctx, model, nums, device, step, binary)
			if err != nil {
				return err
			}
			if err := imgio.SaveGrayPNG(pred, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", outPath, pred.W, pred.H)
			if uncPath != "" {
				if binary {
					return fmt.Errorf("--uncertainty requires a raw (non-binary) prediction")
				}
				if err := imgio.SaveGrayPNG(geom.Uncertainty(pred), uncPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", uncPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelsDir, "models-dir", defaultModelsDir(), "directory to scan for *.onnx weights")
	cmd.Flags().StringVar(&model, "model", "", "ensemble id, e.g. p_Ante_NanoSOI_v5-d4")
	cmd.Flags().IntSliceVar(&nums, "nums", nil, "member numbers to use (default: all)")
	cmd.Flags().StringVar(&imagePath, "image", "", "device layout image (PNG)")
	cmd.Flags().Float64Var(&deviceLength, "device-length", 0, "physical device width in nm")
	cmd.Flags().Float64Var(&resolution, "resolution", 1, "pixel pitch in nm/px")
	cmd.Flags().IntVar(&step, "step", 0, "sliding-window step in px (default: half tile)")
	cmd.Flags().BoolVar(&binary, "binary", false, "binarize the prediction at 0.5")
	cmd.Flags().StringVar(&outPath, "out", "prediction.png", "output prediction PNG")
	cmd.Flags().StringVar(&uncPath, "uncertainty", "", "also write an uncertainty map PNG")
	cmd.Flags().IntVar(&tileSize, "tile-size", 0, "fallback tile size for dynamic input shapes")
	cmd.Flags().StringVar(&onnxLib, "onnx-lib", "", "path to the onnxruntime shared library")
	cobra.CheckErr(cmd.MarkFlagRequired("model"))
	cobra.CheckErr(cmd.MarkFlagRequired("image"))
	cobra.CheckErr(cmd.MarkFlagRequired("device-length"))
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		devicePath   string
		predPath     string
		deviceLength float64
		resolution   float64
		outPath      string
		cellName     string
		deviceLayer  int16
		predLayer    int16
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export device and prediction geometry to a GDSII file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cell := &gds.Cell{Name: cellName}
			if devicePath != "" {
				g, err := imgio.LoadDeviceImage(devicePath, deviceLength, resolution)
				if err != nil {
					return err
				}
				cell.AddGrid(deviceLayer, geom.Binarize(g), resolution)
			}
			if predPath != "" {
				g, err := imgio.LoadDeviceImage(predPath, deviceLength, resolution)
				if err != nil {
					return err
				}
				cell.AddGrid(predLayer, geom.Binarize(g), resolution)
			}
			if len(cell.Boundaries) == 0 {
				return fmt.Errorf("nothing to export: pass --device and/or --prediction")
			}
			lib := &gds.Library{Name: "PREFAB", Cells: []*gds.Cell{cell}}
			if err := lib.WriteFile(outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d boundaries)\n", outPath, len(cell.Boundaries))
			return nil
		},
	}
	cmd.Flags().StringVar(&devicePath, "device", "", "device layout image (PNG)")
	cmd.Flags().StringVar(&predPath, "prediction", "", "prediction image (PNG)")
	cmd.Flags().Float64Var(&deviceLength, "device-length", 0, "physical device width in nm")
	cmd.Flags().Float64Var(&resolution, "resolution", 1, "pixel pitch in nm/px")
	cmd.Flags().StringVar(&outPath, "out", "device.gds", "output GDSII file")
	cmd.Flags().StringVar(&cellName, "cell", "DEVICE", "GDSII structure name")
	cmd.Flags().Int16Var(&deviceLayer, "device-layer", 1, "layer for device geometry")
	cmd.Flags().Int16Var(&predLayer, "prediction-layer", 2, "layer for prediction geometry")
	cobra.CheckErr(cmd.MarkFlagRequired("device-length"))
	return cmd
}
