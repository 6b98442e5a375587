package main

import (
	"fmt"

	"github.com/lox/ginrummy/internal/server"
)

// ConfigCmd groups configuration file helpers
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a configuration file with the default settings"`
}

// ConfigInitCmd writes the defaults as HCL
type ConfigInitCmd struct {
	Path  string `default:"ginrummy.hcl" help:"Where to write the file"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run() error {
	if err := server.WriteDefaultConfig(c.Path, c.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", c.Path)
	return nil
}
