// The main package for the catalog executable.
package main

import (
	"github.com/calistenia/catalog/cmd"
)

func main() {
	cmd.Execute()
}
