package main

import "github.com/rhinobase/workshop/internal/cli"

func main() {
	cli.Execute()
}
