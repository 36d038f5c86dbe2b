package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sideseeing-report/internal/app"
	"sideseeing-report/internal/config"
	"sideseeing-report/internal/modules/report"

	"github.com/spf13/cobra"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	var (
		templatePath string
		mode         string
	)

	root := &cobra.Command{
		Use:   appName + " <input-path> <output-path>",
		Short: "Generate a self-contained HTML report from a sensor dataset or notebook",
		Long: `Generate a self-contained HTML report.

In static and interactive modes <input-path> is a dataset directory holding one
subdirectory per recording instance. In notebook mode it is an .ipynb file.`,
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := report.ParseMode(mode)
			if err != nil {
				return err
			}
			res, err := app.Run(cmd.Context(), cfg, app.Options{
				InputPath:    args[0],
				OutputPath:   args[1],
				TemplatePath: templatePath,
				Mode:         m,
			})
			if err != nil {
				return err
			}
			slog.Info("report written", "path", res.Path, "bytes", res.Size)
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", res.Path)
			return nil
		},
	}
	root.Flags().StringVar(&templatePath, "template", "", "override template file (default: built-in)")
	root.Flags().StringVar(&mode, "mode", string(report.ModeStatic), "static, interactive or notebook")

	root.AddCommand(newPreviewCmd(cfg))
	return root
}

func newPreviewCmd(cfg config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "preview <report.html>",
		Short: "Serve a written report over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg
			if addr != "" {
				c.HTTPAddr = addr
			}
			err := app.Preview(cmd.Context(), c, args[0])
			if errors.Is(err, context.Canceled) {
				slog.Info("shutting down")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: HTTP_ADDR)")
	return cmd
}
