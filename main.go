package main

import "github.com/denysvitali/audio-renamer/cmd"

func main() {
	cmd.Execute()
}
