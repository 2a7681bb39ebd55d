package main

import "github.com/Dhairyashah5122/project-hotelrover/services/scheduler/cli"

func main() {
	cli.Execute()
}
