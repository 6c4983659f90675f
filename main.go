package main

import "genfity-report-service/cmd"

func main() {
	cmd.Execute()
}
