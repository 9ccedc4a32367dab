package main

import "github.com/Dleifnesor/PAW/internal/cli"

func main() {
	cli.Execute()
}
