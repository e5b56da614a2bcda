package main

import "repoxray/cmd"

func main() {
	cmd.Execute()
}
