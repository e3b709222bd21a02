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
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDeck/pkg/prefs"
)

var (
	prefsCmd = &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local preferences",
	}
	prefsShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		RunE:  runPrefsShow,
	}
	prefsFontSizeCmd = &cobra.Command{
		Use:   "font-size <points>",
		Short: fmt.Sprintf("Set the terminal panel font size (%d-%d)", prefs.MinFontSize, prefs.MaxFontSize),
		Args:  cobra.ExactArgs(1),
		RunE:  runPrefsFontSize,
	}
	prefsViewportCmd = &cobra.Command{
		Use:   "viewport <preset>",
		Short: "Set the browser panel viewport preset (desktop, tablet, mobile)",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrefsViewport,
	}
)

func init() {
	prefsCmd.AddCommand(prefsShowCmd, prefsFontSizeCmd, prefsViewportCmd)
	rootCmd.AddCommand(prefsCmd)
}

func openPrefsStore() (*prefs.Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return prefs.Open(prefs.Config{Path: filepath.Join(dir, "prefs")})
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	s, err := openPrefsStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return showPrefs(cmd.OutOrStdout(), s)
}

func runPrefsFontSize(cmd *cobra.Command, args []string) error {
	s, err := openPrefsStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return setFontSizePref(cmd.OutOrStdout(), s, args[0])
}

func runPrefsViewport(cmd *cobra.Command, args []string) error {
	s, err := openPrefsStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return setViewportPref(cmd.OutOrStdout(), s, args[0])
}

func showPrefs(out io.Writer, s *prefs.Store) error {
	size, err := s.FontSize()
	if err != nil {
		return err
	}
	preset, err := s.ViewportPreset()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "font-size: %d\n", size)
	fmt.Fprintf(out, "viewport:  %s\n", preset)
	return nil
}

func setFontSizePref(out io.Writer, s *prefs.Store, arg string) error {
	size, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("font size must be a number, got %q", arg)
	}
	if err := s.SetFontSize(size); err != nil {
		return err
	}
	// Report the stored value so out-of-range input shows the clamp.
	stored, err := s.FontSize()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "font-size set to %d\n", stored)
	return nil
}

func setViewportPref(out io.Writer, s *prefs.Store, name string) error {
	if err := s.SetViewportPreset(name); err != nil {
		return err
	}
	fmt.Fprintf(out, "viewport set to %s\n", name)
	return nil
}
