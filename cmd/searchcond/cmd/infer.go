package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/searchcond/internal/core/api"
	"github.com/solatis/searchcond/internal/filter"
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run condition inference for one filter or state",
	Long: `Reads a UI filter (--filter) or a raw condition state (--state) and prints
the inference result as JSON. "-" reads from stdin. Without either flag, stdin
holds a request object {"filter": ...} or {"state": ...} with optional "trace".`,
	Args: cobra.NoArgs,
	RunE: runInfer,
}

func init() {
	rootCmd.AddCommand(inferCmd)
	inferCmd.Flags().String("filter", "", "UI filter JSON file, - for stdin")
	inferCmd.Flags().String("state", "", "condition state JSON file, - for stdin")
	inferCmd.Flags().Bool("trace", false, "include the inference trace")
}

func runInfer(cmd *cobra.Command, args []string) error {
	filterPath, _ := cmd.Flags().GetString("filter")
	statePath, _ := cmd.Flags().GetString("state")
	if filterPath != "" && statePath != "" {
		return fmt.Errorf("--filter and --state are mutually exclusive")
	}

	trace := cfg.Engine.Trace
	if cmd.Flags().Changed("trace") {
		trace, _ = cmd.Flags().GetBool("trace")
	}

	var req api.InferRequest
	switch {
	case filterPath != "":
		data, err := readInput(cmd, filterPath)
		if err != nil {
			return err
		}
		f, err := api.DecodeFilter(data)
		if err != nil {
			return err
		}
		req = api.InferRequest{State: filter.ToConditionState(f), Trace: trace}
	case statePath != "":
		data, err := readInput(cmd, statePath)
		if err != nil {
			return err
		}
		state, err := api.DecodeState(data)
		if err != nil {
			return err
		}
		req = api.InferRequest{State: state, Trace: trace}
	default:
		data, err := readInput(cmd, "-")
		if err != nil {
			return err
		}
		if req, err = api.DecodeInferJSON(data, trace); err != nil {
			return err
		}
		if cmd.Flags().Changed("trace") {
			req.Trace = trace
		}
	}

	rs, _, err := loadActiveRules()
	if err != nil {
		return err
	}
	result := buildEngine(rs).Infer(req.State, req.Trace)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// readInput reads path, or the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
