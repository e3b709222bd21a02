// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDeck/pkg/api"
	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/logging"
	"github.com/AleutianAI/AleutianDeck/pkg/prefs"
	"github.com/AleutianAI/AleutianDeck/pkg/store"
	"github.com/AleutianAI/AleutianDeck/pkg/transport"
	"github.com/AleutianAI/AleutianDeck/pkg/tui"
	"github.com/AleutianAI/AleutianDeck/pkg/workspace"
)

var (
	flagConfigPath  string
	flagAPIURL      string
	flagWSURL       string
	flagToken       string
	flagLogLevel    string
	flagProjectRoot string
	flagProjectID   string

	rootCmd = &cobra.Command{
		Use:   "deck",
		Short: "Terminal dashboard for the Aleutian agent platform",
		Long: `Deck is a terminal client for the Aleutian backend: browse
conversations, stream chat, review plans, manage agent memories, and
track usage against budgets.`,
	}

	dashCmd = &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive dashboard",
		RunE:  runDash,
	}

	memoryCmd = &cobra.Command{
		Use:   "memory",
		Short: "Export or import agent memories",
	}
	memoryExportCmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Export memories as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMemoryExport,
	}
	memoryImportCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Import memories from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE:  runMemoryImport,
	}

	usageCmd = &cobra.Command{
		Use:   "usage",
		Short: "Usage and budget queries",
	}
	usageReportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print daily usage and budget alerts for the last 30 days",
		RunE:  runUsageReport,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "config file (default ~/.aleutiandeck/config.yaml)")
	pf.StringVar(&flagAPIURL, "api-url", "", "backend REST base URL")
	pf.StringVar(&flagWSURL, "ws-url", "", "backend WebSocket base URL")
	pf.StringVar(&flagToken, "token", "", "bearer token")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, or error")

	df := dashCmd.Flags()
	df.StringVar(&flagProjectRoot, "project-root", "", "local workspace to watch and auto-save")
	df.StringVar(&flagProjectID, "project", "", "project id for workspace saves")

	memoryCmd.AddCommand(memoryExportCmd, memoryImportCmd)
	usageCmd.AddCommand(usageReportCmd)
	rootCmd.AddCommand(dashCmd, memoryCmd, usageCmd)
}

func resolveConfig() (Config, error) {
	return loadConfig(flagConfigPath, Config{
		APIURL:   flagAPIURL,
		WSURL:    flagWSURL,
		Token:    flagToken,
		LogLevel: flagLogLevel,
	})
}

func newAPIClient(cfg Config, logger *logging.Logger) (*api.Client, error) {
	return api.New(api.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.Token,
		Logger:  logger.Slog(),
	})
}

// =============================================================================
// dash
// =============================================================================

func runDash(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so logs go to file only.
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		LogDir: cfg.LogDir,
		Quiet:  true,
	})
	defer logger.Close()

	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	prefStore, err := prefs.Open(prefs.Config{Path: filepath.Join(dir, "prefs")})
	if err != nil {
		return err
	}
	defer prefStore.Close()

	stores := tui.Stores{
		Conversations: store.NewConversationStore(client),
		Plans:         store.NewPlanStore(client),
		Memories:      store.NewMemoryStore(client),
		Projects:      store.NewProjectStore(client),
		Usage:         store.NewUsageStore(client),
		Messages:      store.NewMessageLog(client),
		Selection:     store.NewSelection(),
		Prefs:         prefStore,
	}

	chat := transport.NewChatSocket(transport.ChatConfig{
		URL:      cfg.WSURL + "/ws/chat",
		Token:    cfg.Token,
		Messages: stores.Messages,
		Plans:    stores.Plans,
		Logger:   logger.Slog(),
	})
	defer chat.Close()

	git := workspace.NewGitPanel(client)

	var saver *workspace.AutoSaver
	var watcher *workspace.Watcher
	if flagProjectRoot != "" {
		root, err := filepath.Abs(flagProjectRoot)
		if err != nil {
			return err
		}
		save := func(ctx context.Context, path string) error {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			return client.SaveWorkspaceFile(ctx, flagProjectID, rel, content)
		}
		saver, err = workspace.NewAutoSaver(save, workspace.DefaultAutoSaveInterval, logger.Slog())
		if err != nil {
			return err
		}
		saver.Start()
		defer saver.Stop()

		watcher, err = workspace.NewWatcher(root, logger.Slog())
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	model := tui.NewModel(tui.Config{Stores: stores, Chat: chat, Git: git, AutoSave: saver})
	program := tea.NewProgram(model, tea.WithAltScreen())

	if watcher != nil {
		go func() {
			for c := range watcher.Changes() {
				if !c.IsDir && !c.Removed {
					saver.MarkDirty(c.Path)
				}
				program.Send(tui.FileChangedMsg{Change: c})
			}
		}()
	}

	// Socket events arrive outside the event loop; forward them as
	// messages so the view redraws.
	chat.SetCallbacks(
		func(st transport.State) { program.Send(tui.SocketStateMsg{State: st}) },
		func() { program.Send(tui.StoreChangedMsg{}) },
	)

	if err := chat.Connect(cmd.Context()); err != nil {
		logger.Warn("initial chat connect failed", "error", err)
	}

	_, err = program.Run()
	return err
}

// =============================================================================
// memory export / import
// =============================================================================

func runMemoryExport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	memories := store.NewMemoryStore(client)
	if err := memories.FetchAll(ctx, api.MemoryQuery{}); err != nil {
		return fmt.Errorf("fetch memories: %w", err)
	}

	items := memories.Items()
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	exported := memories.Export(ids)

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if len(args) == 1 {
		if err := os.WriteFile(args[0], data, 0640); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d memories to %s\n", len(exported), args[0])
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runMemoryImport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	var exported []datatypes.ExportedMemory
	if err := json.Unmarshal(data, &exported); err != nil {
		return fmt.Errorf("parse import: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	memories := store.NewMemoryStore(client)
	res := memories.Import(ctx, exported)

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d memories\n", res.Stored, len(exported))
	for _, msg := range res.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d memories failed to import", len(res.Errors))
	}
	return nil
}

// =============================================================================
// usage report
// =============================================================================

func runUsageReport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	usage := store.NewUsageStore(client)
	to := time.Now()
	if err := usage.FetchAll(ctx, to.AddDate(0, 0, -30), to); err != nil {
		return fmt.Errorf("fetch usage: %w", err)
	}

	out := cmd.OutOrStdout()
	styled := isatty.IsTerminal(os.Stdout.Fd())

	for _, alert := range usage.Budgets() {
		line := fmt.Sprintf("%s budget: $%.2f / $%.2f (%.0f%%)",
			alert.Period, alert.CurrentSpend, alert.Threshold, alert.PercentUsed())
		if styled && alert.PercentUsed() >= 80 {
			line = "\x1b[33m" + line + "\x1b[0m"
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintf(out, "%-12s %12s %12s %8s %10s\n", "date", "input", "output", "reqs", "cost")
	for _, r := range usage.Records() {
		fmt.Fprintf(out, "%-12s %12d %12d %8d %9.2f$\n",
			r.Date, r.InputTokens, r.OutputTokens, r.Requests, r.CostUSD)
	}
	fmt.Fprintf(out, "total: $%.2f\n", usage.TotalCost())
	return nil
}
