// cmd/evalboard/main.go
package main

import (
	cmd "github.com/mwiater/evalboard/internal/cli"
)

// main starts the evalboard CLI by delegating to the cobra root command.
func main() {
	cmd.Execute()
}
