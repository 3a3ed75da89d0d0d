// Command fseqinfo inspects an FSEQ sequence file and prints its
// geometry, dialect, compression, unique_id, sparse ranges, and variable
// headers. It does not print the block index.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fseqio/fseq"
	"github.com/fseqio/fseq/sequence"
)

var jsonOutput bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "fseqinfo <path>",
		Short: "Print the header metadata of an FSEQ sequence file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd, args[0])
		},
	}

	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print metadata as JSON")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func inspect(cmd *cobra.Command, path string) error {
	r, err := fseq.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	meta := r.Metadata()

	if jsonOutput {
		return printJSON(cmd, meta)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:              %s\n", path)
	fmt.Fprintf(out, "dialect:           %s\n", meta.Dialect)
	fmt.Fprintf(out, "compression:       %s\n", meta.Compression)
	fmt.Fprintf(out, "channel_count:     %d\n", meta.Geometry.ChannelCount)
	fmt.Fprintf(out, "frame_count:       %d\n", meta.Geometry.FrameCount)
	fmt.Fprintf(out, "step_time_ms:      %d\n", meta.Geometry.StepTimeMs)
	fmt.Fprintf(out, "unique_id:         %016x\n", meta.UniqueID)
	fmt.Fprintf(out, "sparse_ranges:     %d\n", len(meta.SparseRanges))
	for _, sr := range meta.SparseRanges {
		fmt.Fprintf(out, "  [%d, %d)\n", sr.FirstChannel, sr.FirstChannel+sr.Length)
	}
	fmt.Fprintf(out, "variable_headers:  %d\n", len(meta.VariableHeaders))
	for _, vh := range meta.VariableHeaders {
		fmt.Fprintf(out, "  %c%c: %q\n", vh.Code[0], vh.Code[1], vh.Data)
	}

	return nil
}

func printJSON(cmd *cobra.Command, meta sequence.Metadata) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
