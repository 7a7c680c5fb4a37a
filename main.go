package main

import "media-remuxer/cmd"

func main() {
	cmd.Execute()
}
