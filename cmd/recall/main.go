package main

import "github.com/project-recall/recall/internal/cli"

func main() {
	cli.Execute()
}
