//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "wksentence"
	mainPath   = "./cmd/wksentence"
)

// Default target to run when none is specified
var Default = Build

// Build builds the wksentence binary
func Build() error {
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, mainPath)
}

// Test runs all tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet on all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and installs the binary into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", mainPath)
}

// Clean removes the binary and generated packages
func Clean() error {
	if err := sh.Rm(binaryName); err != nil {
		return err
	}
	matches, err := filepath.Glob("*.apkg")
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return err
		}
	}
	return nil
}
