// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blockpress/internal/components"
	"blockpress/internal/config"
	"blockpress/internal/database"
	"blockpress/internal/logger"
	"blockpress/internal/snapshot"
	"blockpress/internal/storage"
	"blockpress/internal/store"
	"blockpress/internal/themes"
)

// app carries the state shared by all commands once configuration is loaded.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "blockpress",
		Short: "Multi-tenant, block-based CMS",
		Long: `BlockPress serves block-composed pages for many sites from one instance.

Configuration is read from .env, the YAML file given by --config and
BLOCKPRESS_ environment variables (BLOCKPRESS_HTTP__PORT=9000).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "path to the YAML configuration file")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newGenerateCmd(a),
		newCopyAssetsCmd(a),
		newThemesCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if _, err := logger.New(logger.Options{
		Dir:     cfg.Log.Dir,
		Console: cfg.Log.Console,
		Level:   cfg.Log.Level,
		JSON:    cfg.IsProduction(),
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	zap.S().Debugw("configuration loaded", "env", cfg.App.Env, "platform", cfg.Platform)
	return nil
}

func (a *app) openDB() (*sql.DB, error) {
	return database.Connect(a.cfg.DSN(), a.cfg.Database.MaxOpenConns)
}

func (a *app) registry() *themes.Registry {
	return themes.NewRegistry(themes.Options{
		Dir:      a.cfg.Themes.Dir,
		TTL:      a.cfg.Themes.CacheTTL,
		Fallback: a.cfg.Themes.Fallback,
		Builtin:  components.CompiledIDs(),
	})
}

// generator builds the snapshot generator, mirroring to object storage when
// it is configured.
func (a *app) generator(db *sql.DB) (*snapshot.Generator, error) {
	s3, err := storage.New(storage.Options{
		Endpoint:  a.cfg.S3.Endpoint,
		Region:    a.cfg.S3.Region,
		AccessKey: a.cfg.S3.AccessKey,
		SecretKey: a.cfg.S3.SecretKey,
		Bucket:    a.cfg.S3.Bucket,
		Prefix:    a.cfg.S3.Prefix,
		PublicURL: a.cfg.S3.PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	var mirror snapshot.Mirror
	if s3 != nil {
		mirror = s3
		zap.S().Infow("snapshot mirror enabled", "bucket", s3.Bucket())
	}

	src := snapshot.Sources{
		Sites:          store.NewSiteStore(db),
		Pages:          store.NewPageStore(db),
		PageBlocks:     store.NewPageBlockStore(db),
		Templates:      store.NewTemplateStore(db),
		TemplateBlocks: store.NewTemplateBlockStore(db),
		Navigation:     store.NewNavigationStore(db),
		Settings:       store.NewSiteSettingStore(db),
	}
	return snapshot.NewGenerator(src, a.cfg.Snapshot.OutputDir, mirror), nil
}
