package main

import "cutline/internal/cli"

func main() {
	cli.Execute()
}
