package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/newsloom/newsloom/internal/output"
	"github.com/newsloom/newsloom/internal/store"
)

var (
	rateLimitListOutput string
	rateLimitListOut    string
	rateLimitListOutDir string
	rateLimitListAll    bool
	rateLimitListClient string
	rateLimitListPrefix string
)

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rate limit state",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitListOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		db, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		query := store.RateLimitQuery{
			All:    rateLimitListAll,
			Client: strings.TrimSpace(rateLimitListClient),
			Prefix: strings.TrimSpace(rateLimitListPrefix),
		}
		if !query.All && query.Client == "" && query.Prefix == "" {
			query.All = true
		}

		entries, err := db.ListRateLimits(cmd.Context(), query)
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(rateLimitListOut)
		outDir := strings.TrimSpace(rateLimitListOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}

		ext := outputExtension(format)
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("rate-limit.list.%s", ext))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(sink.writer, string(payload))
			return err
		}

		if len(entries) == 0 {
			lines := []string{"Rate Limits", "", "(no stored rate limit state)"}
			_, _ = fmt.Fprint(sink.writer, ascii.DrawBox(strings.Join(lines, "\n"), 0))
			return nil
		}

		formatter := &output.TableFormatter{}
		rendered, err := formatter.FormatRateLimits(entries)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

func init() {
	rateLimitListCmd.Flags().StringVar(&rateLimitListOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	rateLimitListCmd.Flags().StringVar(&rateLimitListOut, "out", "", "Write output to a file (default stdout)")
	rateLimitListCmd.Flags().StringVar(&rateLimitListOutDir, "out-dir", "", "Write output to a directory")
	rateLimitListCmd.Flags().BoolVar(&rateLimitListAll, "all", false, "List all clients")
	rateLimitListCmd.Flags().StringVar(&rateLimitListClient, "client", "", "List a single client (exact match)")
	rateLimitListCmd.Flags().StringVar(&rateLimitListPrefix, "prefix", "", "List clients with matching prefix")
}
