package main

import "Lee_Meetup/cmd/api/cmd"

func main() {
	cmd.Execute()
}
