package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pkt.systems/peek/internal/appconfig"
	"pkt.systems/peek/internal/markdown"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

func newRenderCmd() *cobra.Command {
	var cfgPath string
	var asMessage bool
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a markdown file to preview HTML on stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			src, err := readSource(afero.NewOsFs(), cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			renderer := markdown.New(renderOptions(cfg.Render))
			res, err := renderer.Render(src)
			if err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Debug("render ok", "path", path, "lcount", res.LineCount, "bytes", len(res.HTML))
			out := cmd.OutOrStdout()
			if asMessage {
				data, err := schema.Encode(schema.NewShow(res.HTML, res.LineCount))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%s\n", data)
				return err
			}
			_, err = io.WriteString(out, res.HTML)
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&asMessage, "message", false, "print the show message JSON instead of bare HTML")
	return cmd
}

func renderOptions(cfg appconfig.RenderConfig) markdown.Options {
	return markdown.Options{
		Syntax:          cfg.Syntax,
		Typographer:     cfg.Typographer,
		Linkify:         cfg.Linkify,
		DiagramKeywords: cfg.DiagramKeywords,
	}
}

func readSource(fs afero.Fs, stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
