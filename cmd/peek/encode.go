package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pkt.systems/peek/internal/command"
	"pkt.systems/peek/internal/frame"
	"pkt.systems/pslog"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Convert action:argument lines on stdin into the framed command stream",
		Long: "Convert action:argument lines on stdin into length-prefixed frames on stdout.\n" +
			"A show line names a markdown file whose content is sent. Example:\n\n" +
			"  printf 'base:docs\\nshow:docs/README.md\\nscroll:12\\n' | peek encode | peek serve",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := encodeLines(cmd.Context(), afero.NewOsFs(), cmd.InOrStdin(), cmd.OutOrStdout())
			pslog.Ctx(cmd.Context()).Debug("encode done", "commands", n)
			return err
		},
	}
}

// encodeLines writes one framed command per non-blank input line and returns
// how many were written.
func encodeLines(ctx context.Context, fs afero.Fs, r io.Reader, w io.Writer) (int, error) {
	dec := command.NewLineDecoder(r)
	fw := frame.NewWriter(w)
	written := 0
	for {
		cmd, err := dec.Next(ctx)
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		switch c := cmd.(type) {
		case command.Show:
			if c.Path == "" {
				return written, errors.New("show names no file")
			}
			data, err := afero.ReadFile(fs, c.Path)
			if err != nil {
				return written, fmt.Errorf("show %s: %w", c.Path, err)
			}
			err = fw.WriteCommand(string(command.ActionShow), string(data))
			if err != nil {
				return written, err
			}
		case command.Scroll:
			if err := fw.WriteCommand(string(command.ActionScroll), c.Line); err != nil {
				return written, err
			}
		case command.Base:
			if err := fw.WriteCommand(string(command.ActionBase), c.Path); err != nil {
				return written, err
			}
		case command.Unknown:
			if c.Name == "" {
				continue
			}
			if err := fw.WriteCommand(c.Name); err != nil {
				return written, err
			}
		}
		written++
	}
}
