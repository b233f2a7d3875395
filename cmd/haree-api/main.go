package main

import (
	"fmt"
	"os"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/routes"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	db, err := config.NewDatabase()
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	r := routes.SetupRouter(db)
	r.Listen(":" + port)
}
