package main

import (
	"fmt"

	"github.com/cinehub/cinehub-service/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
