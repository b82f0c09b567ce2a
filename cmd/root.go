/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pharmaevents/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pharmaevents",
	Short: "Run the PharmaEvents web application and its data tools.",
	Long: `
**********************************************
*              PHARMA EVENTS                 *
**********************************************

This CLI serves the PharmaEvents web application, bulk-imports user accounts
from Excel or CSV sheets, and exports events to CSV or Excel.

Data lives in SQLite by default, or in PostgreSQL when database.driver is
"postgres" or DATABASE_URL points at a PostgreSQL server.

Supported input formats:
- Excel: .xlsx, .xls
- CSV: .csv
`,
	Example: `
  # Create configuration file
  pharmaevents config create

  # Start the web application
  pharmaevents serve --port 5000

  # Bulk-import users from a spreadsheet
  pharmaevents import -i ./users.xlsx

  # Download the user import template
  pharmaevents template users -o ./users_template.xlsx

  # Export all events
  pharmaevents export --mode raw --output ./events.csv

  # Export monthly summary
  pharmaevents export --mode monthly --output ./monthly.xlsx
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.pharmaevents.yaml, then ./.pharmaevents.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pharmaevents")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: pharmaevents config create")
	}
}
