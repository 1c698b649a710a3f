// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"tabproc/config"
	"tabproc/windows"
)

const (
	appName    = "tabproc"
	appID      = "io.github.tabproc"
	appVersion = "0.1.0"
)

var (
	configPath string
	logLevel   string
	sheet      string

	rootCmd = &cobra.Command{
		Use:   appName + " [file]",
		Short: "View, sort, chart and edit spreadsheet and CSV files",
		Long: `tabproc opens .xlsx, .xlsm, .csv, .parquet and .json files in a grid.
Click a column header to sort the rows, a row header to reorder the columns,
plot two columns as a bar chart, or search and replace across every cell.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, appVersion)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&sheet, "sheet", "", "Excel worksheet to open")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// flags win over the file
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("sheet") {
		cfg.Excel.Sheet = sheet
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	logger.Info("starting", "version", appVersion, "config", configPath, "file", path)

	mw, err := windows.NewMainWindow(app.NewWithID(appID), windows.Options{Config: cfg, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create main window: %w", err)
	}
	mw.Run(path)
	return nil
}
