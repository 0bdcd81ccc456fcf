/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nuts-foundation/nuts-esign/configuration"
	"github.com/nuts-foundation/nuts-esign/engine"
	"github.com/nuts-foundation/nuts-esign/logging"
)

// ConfigFileFlag points to the yaml configuration file
const ConfigFileFlag = "configfile"

var e = engine.NewSignEngine()
var rootCmd = e.Cmd

func init() {
	rootCmd.PersistentFlags().String(ConfigFileFlag, "", "Path to a yaml configuration file")
	rootCmd.PersistentFlags().AddFlagSet(e.FlagSet)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		configFile, err := cmd.Flags().GetString(ConfigFileFlag)
		if err != nil {
			return err
		}
		return loadConfig(configFile)
	}
}

// loadConfig reads the configuration file, environment and flags into the engine
func loadConfig(configFile string) error {
	path, name := splitConfigFile(configFile)
	if err := configuration.Initialize(path, name, e.FlagSet); err != nil {
		return err
	}
	c, err := configuration.GetInstance()
	if err != nil {
		return err
	}
	*e.Config = *c
	logging.Log().Debugf("configuration loaded (store: %s, lock: %s, notifier: %s)", c.Store, c.Lock, c.Notifier)
	return nil
}

// splitConfigFile converts "conf/esign.yaml" to the directory and the name without extension
func splitConfigFile(configFile string) (string, string) {
	if configFile == "" {
		return "", ""
	}
	name := filepath.Base(configFile)
	return filepath.Dir(configFile), strings.TrimSuffix(name, filepath.Ext(name))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
