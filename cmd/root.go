/*
Copyright © 2020 hit.zhangjie@gmail.com

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
	"encoding/binary"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pubnames",
	Short: "inspect DWARF .debug_pubnames and .debug_pubtypes",
	Long: `pubnames reads the DWARF name-table sections of an ELF executable.

.debug_pubnames maps global functions and variables, .debug_pubtypes maps
global types, to the DIE that defines them in .debug_info.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pubnames.yaml)")
	rootCmd.PersistentFlags().String("byteorder", "auto", "byte order of the sections: auto, little, big")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print debug logs")

	viper.BindPFlag("byteorder", rootCmd.PersistentFlags().Lookup("byteorder"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("disass.syntax", "gnu")
	viper.SetDefault("disass.max", 10)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".pubnames" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".pubnames")
	}

	viper.SetEnvPrefix("pubnames")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		level.Debug(newLogger()).Log("msg", "using config file", "file", viper.ConfigFileUsed())
	}
}

// newLogger returns a logfmt logger on stderr, debug logs only with --verbose
func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if viper.GetBool("verbose") {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

// byteOrder returns the configured byte order, nil means follow the ELF header
func byteOrder() (binary.ByteOrder, error) {
	switch v := viper.GetString("byteorder"); v {
	case "", "auto":
		return nil, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("invalid byteorder %q, must be auto, little or big", v)
	}
}
