package main

import "github.com/vietddude/finecheck/internal/cli"

func main() {
	cli.Execute()
}
