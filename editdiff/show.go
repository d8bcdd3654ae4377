package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"chat.znkr.io/editdiff/config"
	"chat.znkr.io/editdiff/diff"
	"chat.znkr.io/editdiff/highlight"
	"chat.znkr.io/editdiff/markup"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ORIGINAL EDITED",
		Short: "Shows the differences between two texts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			files, _ := cmd.Flags().GetBool("files")
			output, _ := cmd.Flags().GetString("output")

			original, edited := args[0], args[1]
			if files {
				if original, err = readFile(args[0]); err != nil {
					return err
				}
				if edited, err = readFile(args[1]); err != nil {
					return err
				}
			}
			return show(cmd.OutOrStdout(), cfg, output, diff.Compare(original, edited))
		},
	}
	cmd.Flags().Bool("files", false, "read the texts from the files named by the arguments")
	cmd.Flags().StringP("output", "o", "side", "output format, one of side, highlight, unified, json")
	return cmd
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text: %v", err)
	}
	return string(b), nil
}

type showResult struct {
	Original  string     `json:"original"`
	Edited    string     `json:"edited"`
	Changed   bool       `json:"changed"`
	Alignment [][2]int   `json:"alignment"`
	Edits     []showEdit `json:"edits"`
}

type showEdit struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

func show(w io.Writer, cfg *config.Config, output string, r *diff.Result) error {
	switch output {
	case "side":
		m, err := markup.ByName(cfg.Markup)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n%s\n", r.Render(diff.Original, m), r.Render(diff.Edited, m))
		return err
	case "highlight":
		opts := []highlight.Option{highlight.Formatter(cfg.Formatter), highlight.Style(cfg.Style)}
		for _, side := range []diff.Side{diff.Original, diff.Edited} {
			if err := highlight.Side(w, r.Segments(side), side, opts...); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil
	case "unified":
		err := highlight.Unified(w, r.Edits(), highlight.Formatter(cfg.Formatter), highlight.Style(cfg.Style))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w)
		return err
	case "json":
		m, err := markup.ByName(cfg.Markup)
		if err != nil {
			return err
		}
		res := showResult{
			Original:  r.Render(diff.Original, m),
			Edited:    r.Render(diff.Edited, m),
			Changed:   r.Changed(),
			Alignment: [][2]int{},
			Edits:     []showEdit{},
		}
		for _, p := range r.Alignment {
			res.Alignment = append(res.Alignment, [2]int{p.X, p.Y})
		}
		for _, e := range r.Edits() {
			res.Edits = append(res.Edits, showEdit{Op: e.Op.String(), Text: e.String})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %v", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
