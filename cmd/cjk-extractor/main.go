package main

import "cjk-extractor/internal/cli"

func main() {
	cli.Execute()
}
