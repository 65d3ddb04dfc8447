package main

import "carecircle-server/internal/cmd"

func main() {
	cmd.Execute()
}
