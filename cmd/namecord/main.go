package main

import "github.com/vietddude/namecord/internal/cli"

func main() {
	cli.Execute()
}
