package main

import "github.com/mchmarny/healsure/pkg/cli"

func main() {
	cli.Execute()
}
