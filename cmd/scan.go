package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"repoxray/artifact"
	"repoxray/config"
	"repoxray/ignore"
	"repoxray/scan"
	"repoxray/watcher"
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Scan a source tree and write its index artifact",
	Long: `Scan walks the target directory (default: current directory), builds
the deterministic index, and writes it atomically to the output
directory. With --watch it stays running and rescans after every
debounced batch of file system changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("output", "o", "", "Output directory for the index artifact")
	scanCmd.Flags().StringSliceP("exclude", "e", nil, "Extra ignore pattern (repeatable)")
	scanCmd.Flags().BoolP("watch", "w", false, "Keep running and rescan on file changes")
	scanCmd.Flags().Int("watch-debounce", config.DefaultConfig.WatchDebounceMs, "Watch quiet period in milliseconds")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(cmd, cwd, cfgFile)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	rootName := filepath.Base(cwd)

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = artifact.DefaultDir(cwd, rootName)
	}
	outPath := filepath.Join(outDir, artifact.FileName)

	options := scan.Options{
		Target:   target,
		RootName: rootName,
		Excludes: cfg.Exclude,
		Logger:   logger,
	}

	// The first scan must succeed even in watch mode; a tool that
	// starts without producing an index has nothing to keep fresh.
	if err := scanAndWrite(options, outPath); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}

	matcher, err := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:        target,
		CustomPatterns: cfg.Exclude,
	})
	if err != nil {
		return err
	}
	debounce := time.Duration(cfg.WatchDebounceMs) * time.Millisecond
	w, err := watcher.NewWatcher(target, debounce, matcher, logger)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()
	go w.Start()

	logger.Info("watching for changes", "target", target, "debounce", debounce)
	for batch := range w.Events() {
		logger.Debug("change batch received", "paths", len(batch))
		if err := scanAndWrite(options, outPath); err != nil {
			// Watch mode survives a failed rescan; the previous
			// artifact stays in place.
			logger.Error("rescan failed", "error", err)
		}
	}
	return nil
}

// scanAndWrite runs one scan and atomically replaces the artifact.
func scanAndWrite(options scan.Options, outPath string) error {
	result, err := scan.Run(options)
	if err != nil {
		return err
	}
	if err := artifact.WriteAtomic(outPath, result.Canonical); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Scan complete. Digest: %s", result.Index.Digest)))
	fmt.Printf("Written to: %s\n", outPath)
	return nil
}
