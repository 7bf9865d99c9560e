package main

import "github.com/mcoot/quickquack/internal/cli"

func main() {
	cli.Execute()
}
