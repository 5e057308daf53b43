// Command reimport rewrites import references after files or directories are
// renamed.
package main

import "github.com/mamaar/reimport/internal/cli"

func main() {
	cli.Execute()
}
