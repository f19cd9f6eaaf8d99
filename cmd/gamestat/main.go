// Package main provides the CLI entrypoint for gamestat.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/gamestat/internal/config"
	"github.com/verte-zerg/gamestat/internal/pipeline"
	"github.com/verte-zerg/gamestat/internal/stats"
	"github.com/verte-zerg/gamestat/internal/statsui"
)

const defaultTopGames = 20

var (
	reportTop      int
	reportColor    bool
	reportTimezone string

	trendDays     int
	trendColor    bool
	trendTimezone string

	dashTimezone string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gamestat <database>",
		Short:         "Gaming session statistics dashboard",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}
	rootCmd.Flags().StringVar(&dashTimezone, "timezone", "", "IANA timezone for bucketing (default: local)")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newTrendCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "timezone", &dashTimezone, fileCfg.Report.Timezone)

	loc, err := resolveLocation(dashTimezone)
	if err != nil {
		return err
	}
	data, err := pipeline.ProcessFile(context.Background(), args[0], loc)
	if err != nil {
		return err
	}

	model := statsui.NewModel(data, loc)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <database>",
		Short: "Print a text report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportTop, "top", defaultTopGames, "number of top games to list")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored output")
	cmd.Flags().StringVar(&reportTimezone, "timezone", "", "IANA timezone for bucketing (default: local)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "top", &reportTop, fileCfg.Report.Top)
	applyBoolConfig(cmd, "color", &reportColor, fileCfg.Report.Color)
	applyStringConfig(cmd, "timezone", &reportTimezone, fileCfg.Report.Timezone)
	if reportTop <= 0 {
		return fmt.Errorf("--top must be > 0")
	}

	loc, err := resolveLocation(reportTimezone)
	if err != nil {
		return err
	}
	data, err := pipeline.ProcessFile(context.Background(), args[0], loc)
	if err != nil {
		return err
	}
	if err := stats.RenderReportWithColor(cmd.OutOrStdout(), data, reportTop, reportColor); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend <database>",
		Short: "Plot daily playtime over time",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrendCmd,
	}
	cmd.Flags().IntVar(&trendDays, "days", 90, "number of trailing days to plot")
	cmd.Flags().BoolVar(&trendColor, "color", false, "force colored output")
	cmd.Flags().StringVar(&trendTimezone, "timezone", "", "IANA timezone for bucketing (default: local)")
	return cmd
}

func runTrendCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "color", &trendColor, fileCfg.Report.Color)
	applyStringConfig(cmd, "timezone", &trendTimezone, fileCfg.Report.Timezone)
	if trendDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}

	loc, err := resolveLocation(trendTimezone)
	if err != nil {
		return err
	}
	data, err := pipeline.ProcessFile(context.Background(), args[0], loc)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	useColor := stats.ShouldUseColor(out, trendColor)
	if err := stats.RenderTrend(out, data, trendDays, useColor); err != nil {
		return fmt.Errorf("failed to render trend: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resolveLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# gamestat configuration
# Uncomment a value to enable it. CLI flags override config values.

[report]
# top = %d             # Number of top games to list
# color = false        # Force colored output
# timezone = "Local"   # IANA timezone for bucketing
`, defaultTopGames)
}
