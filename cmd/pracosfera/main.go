package main

import "github.com/DTMaciejM/pracosfera-main/cmd"

func main() {
	cmd.Execute()
}
