package main

import "github.com/arloliu/clpir/internal/cli"

func main() {
	cli.Execute()
}
