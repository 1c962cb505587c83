// The main package for the mooncaker executable.
package main

import (
	"github.com/TheBoringBakery/MoonCaker/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
