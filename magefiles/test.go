//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector, which needs cgo.
func (Test) All() error {
	_, err := goCmd(withArgs("test", "-race", "-count=1", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs the tests of the material systems only.
func (Test) Systems() error {
	_, err := goCmd(withArgs("test", "-count=1", "./engine/systems/..."), withDir("."), withStream())
	return err
}
