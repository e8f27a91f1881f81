package main

import "github.com/mvp-joe/dice/internal/cli"

func main() {
	cli.Execute()
}
