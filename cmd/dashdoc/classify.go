package main

import (
	"fmt"

	"github.com/fwojciec/dashdoc"
)

// Run executes the classify command.
func (c *ClassifyCmd) Run(deps *Dependencies) error {
	for _, title := range c.Titles {
		t, ok := dashdoc.ClassifyTitle(title)
		if !ok {
			fmt.Fprintf(deps.Stdout, "%s  %s (default)\n", t, title)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %s\n", t, title)
	}
	return nil
}
