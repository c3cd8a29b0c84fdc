// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blockpress/internal/components"
	"blockpress/internal/themes"
)

func newThemesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Inspect installed themes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List compiled and discovered themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.registry()
			loader := components.NewLoader(reg)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tCOMPONENTS")
			for _, id := range reg.Available() {
				source := "disk"
				if reg.IsBuiltin(id) {
					source = "builtin"
				}
				t, err := loader.Theme(id)
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\t%s\terror: %v\n", id, source, err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", id, t.Name, source, len(t.Types()))
			}
			return tw.Flush()
		},
	})
	return cmd
}

func newCopyAssetsCmd(a *app) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "copy-theme-assets",
		Short: "Copy the assets of every theme into DEST/<theme>/",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.registry()
			total := 0
			for _, id := range reg.Available() {
				src, ok := themeAssetsFS(reg, id)
				if !ok {
					continue
				}
				n, err := themes.CopyAssets(src, filepath.Join(dest, id))
				if err != nil {
					return fmt.Errorf("copy assets of %s: %w", id, err)
				}
				zap.S().Infow("theme assets copied", "theme", id, "files", n)
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d files to %s\n", total, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

// themeAssetsFS returns the asset tree of a theme: embedded files for
// compiled themes, <dir>/<id>/assets for disk themes.
func themeAssetsFS(reg *themes.Registry, id string) (fs.FS, bool) {
	if t, ok := components.Compiled(id); ok && t.Assets != nil {
		return t.Assets, true
	}
	dir := filepath.Join(reg.ThemeDir(id), "assets")
	info, err := os.Stat(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			zap.S().Warnw("theme assets unreadable", "theme", id, "error", err)
		}
		return nil, false
	}
	if !info.IsDir() {
		return nil, false
	}
	return os.DirFS(dir), true
}
