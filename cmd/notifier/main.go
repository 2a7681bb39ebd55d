package main

import "github.com/Dhairyashah5122/project-hotelrover/services/notifier/cli"

func main() {
	cli.Execute()
}
