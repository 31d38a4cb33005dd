// ./main.go
package main

import (
	"github.com/xkilldash9x/chaser/cmd"
)

// main is the entry point for the chaser CLI.
func main() {
	cmd.Execute()
}
