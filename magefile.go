//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the examplegen binary
func Build() error {
	return sh.RunV("go", "build", "-o", "examplegen", "./cmd/examplegen")
}

// Install installs examplegen into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/examplegen")
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm("examplegen")
}
