package main

import "github.com/Ayaan2907/powerBiChat/cmd"

func main() {
	cmd.Execute()
}
