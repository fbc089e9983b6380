package main

import "mod-translator/internal/cli"

func main() {
	cli.Execute()
}
