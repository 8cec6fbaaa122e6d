package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configInitOpts struct {
	path  string
	force bool
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit()
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitOpts.path, "path", "", "file to write (default: user config dir)")
	configInitCmd.Flags().BoolVar(&configInitOpts.force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
}

func runConfigInit() error {
	path := configInitOpts.path
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.FileName)
	}

	if !configInitOpts.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	var err error
	if configInitOpts.path == "" {
		path, err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}
