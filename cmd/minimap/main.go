package main

import "github.com/reuno721/MiniMapPad/internal/cli"

func main() {
	cli.Execute()
}
