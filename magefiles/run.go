//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/spaghettifunk/pbrforge/testbed"
)

type Run mg.Namespace

// Generates the sample texture project and builds a material for every folder.
func (Run) Example() error {
	root, err := os.MkdirTemp("", "pbrforge-example-")
	if err != nil {
		return err
	}
	folders, err := testbed.Project(root)
	if err != nil {
		return err
	}
	fmt.Printf("Example project in %s\n", root)

	args := append([]string{"run", ".", "-project", root, "-pack", "-log-level", "debug"}, folders...)
	if _, err := goCmd(withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
