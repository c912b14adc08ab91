package main

import "askdb/internal/cmd"

func main() {
	cmd.Execute()
}
