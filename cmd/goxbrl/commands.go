package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	xbrl "github.com/RxDataLab/go-xbrl"
)

var loadCmd = &cobra.Command{
	Use:   "load <entry-point>...",
	Short: "Load entry points and print a summary of each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		opts, err := sessionOptions(logger)
		if err != nil {
			return err
		}
		results, err := xbrl.LoadBatch(cmd.Context(), xbrl.BatchOptions{
			EntryPoints:  args,
			Options:      opts,
			Concurrency:  v.GetInt("jobs"),
			KeepSessions: true,
		})
		if err != nil {
			return err
		}
		summaries := make([]*Summary, 0, len(results))
		for _, r := range results {
			summaries = append(summaries, summarizeResult(r))
			if r.Session != nil {
				r.Session.Close()
			}
		}
		if len(summaries) == 1 {
			return writeJSON(summaries[0])
		}
		return writeJSON(summaries)
	},
}

var ixdsCmd = &cobra.Command{
	Use:   "ixds <document>...",
	Short: "Load inline XBRL documents as one document set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		opts, err := sessionOptions(logger)
		if err != nil {
			return err
		}
		s := xbrl.NewSession(opts)
		defer s.Close()

		doc, loadErr := s.LoadInlineDocumentSet(cmd.Context(), args)
		summary := summarizeSession(args[0], s, doc)
		if loadErr != nil {
			summary.Error = loadErr.Error()
		}
		return writeJSON(summary)
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify <file>...",
	Short: "Print the document type of local files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := make(map[string]string, len(args))
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			typ, err := xbrl.Identify(f)
			_ = f.Close()
			if err != nil {
				out[path] = "error: " + err.Error()
				continue
			}
			out[path] = typ.String()
		}
		return writeJSON(out)
	},
}

func init() {
	loadCmd.Flags().IntP("jobs", "j", 4, "Entry points loaded at once")
	for _, c := range []*cobra.Command{loadCmd, ixdsCmd} {
		c.Flags().String("target", "", "Inline XBRL target to load")
		c.Flags().Bool("all-targets", false, "Discover the DTS of every inline XBRL target")
	}
}

func writeJSON(value any) error {
	var w io.Writer = os.Stdout
	if path := v.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
