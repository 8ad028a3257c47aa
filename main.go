package main

import "github.com/GG1991/MicroPP/cmd"

func main() {
	cmd.Execute()
}
