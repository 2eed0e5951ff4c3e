package main

import "github.com/KaramelBytes/vehdash/cmd"

func main() {
	cmd.Execute()
}
