package main

import "photosync/cmd"

func main() {
	cmd.Execute()
}
