package main

import "thoreinstein.com/gitman/cmd"

func main() {
	cmd.Execute()
}
