package main

import "github.com/upsign/service/internal/cli"

func main() {
	cli.Execute()
}
