package main

import "github.com/solcards/gocardsd/internal/cli"

func main() {
	cli.Execute()
}
