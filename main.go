package main

import "github.com/mdocgo/mdocgo/cmd"

func main() {
	cmd.Execute()
}
