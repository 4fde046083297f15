package main

import (
	"fmt"

	"github.com/fwojciec/dashdoc"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	if len(deps.Catalog.Docsets) == 0 {
		fmt.Fprintln(deps.Stdout, "No docsets configured.")
		return nil
	}

	for _, cfg := range deps.Catalog.Docsets {
		set, err := dashdoc.NewDocSet(cfg)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", dashdoc.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", set.Identifier, set.Title, set.Manifest().FallbackURL)
		for _, src := range set.Sources {
			fmt.Fprintf(deps.Stdout, "    %s  %s\n", src.Title, src.TocURL())
		}
	}
	return nil
}
