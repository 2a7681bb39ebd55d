package main

import "github.com/Dhairyashah5122/project-hotelrover/services/api-gateway/cli"

func main() {
	cli.Execute()
}
