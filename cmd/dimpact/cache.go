package main

import (
	"context"

	"github.com/spf13/cobra"
)

var cacheFormat string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent symbol/edge index",
}

var cacheBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the index from scratch (build_all, §4.5)",
	Args:  cobra.NoArgs,
	RunE:  runCacheBuild,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report file/symbol/edge counts and the last build's run id",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the store file, leaving an empty schema in place",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Reconcile the store against the current workspace and report stale paths",
	Args:  cobra.NoArgs,
	RunE:  runCacheVerify,
}

func init() {
	for _, c := range []*cobra.Command{cacheBuildCmd, cacheStatsCmd, cacheClearCmd, cacheVerifyCmd} {
		c.Flags().StringVar(&cacheFormat, "format", "json", "output format: json or yaml")
	}
	cacheCmd.AddCommand(cacheBuildCmd, cacheStatsCmd, cacheClearCmd, cacheVerifyCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheBuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)
	reg := buildRegistry(cfg.Language)

	handle := mustOpenStore(repoRoot, cfg, reg, mergedIgnoreDirs(cfg, nil), logger)
	defer handle.Close()

	if err := handle.BuildAll(context.Background()); err != nil {
		return err
	}

	stats, err := handle.Stats()
	if err != nil {
		return err
	}
	return writeOutput(stats, cacheFormat)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)
	reg := buildRegistry(cfg.Language)

	handle := mustOpenStore(repoRoot, cfg, reg, mergedIgnoreDirs(cfg, nil), logger)
	defer handle.Close()

	stats, err := handle.Stats()
	if err != nil {
		return err
	}
	return writeOutput(stats, cacheFormat)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)
	reg := buildRegistry(cfg.Language)

	handle := mustOpenStore(repoRoot, cfg, reg, mergedIgnoreDirs(cfg, nil), logger)
	defer handle.Close()

	if err := handle.Clear(); err != nil {
		return err
	}

	stats, err := handle.Stats()
	if err != nil {
		return err
	}
	return writeOutput(stats, cacheFormat)
}

func runCacheVerify(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)
	reg := buildRegistry(cfg.Language)

	handle := mustOpenStore(repoRoot, cfg, reg, mergedIgnoreDirs(cfg, nil), logger)
	defer handle.Close()

	updated, err := handle.Verify(context.Background())
	if err != nil {
		return err
	}

	return writeOutput(struct {
		UpdatedPaths []string `json:"updated_paths" yaml:"updated_paths"`
	}{UpdatedPaths: updated}, cacheFormat)
}
