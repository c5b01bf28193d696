// Command userstamp manages stamped records from the command line.
package main

import "github.com/mesh-intelligence/userstamp/internal/cli"

func main() {
	cli.Execute()
}
