package main

import "github.com/orgball2608/insta-archive/internal/cli"

func main() {
	cli.Execute()
}
