//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds the pbrforge binary into bin/.
func (Build) Binary() error {
	if _, err := goCmd(withArgs("mod", "download")); err != nil {
		return err
	}
	if _, err := goCmd(withArgs("build", "-o", "bin/pbrforge", "."), withStream()); err != nil {
		return err
	}
	return nil
}
