package main

import (
	"fmt"
	"os"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/jobs/cron"
	"gorm.io/gorm"
)

type Worker interface {
	Process()
}

func CreateWorker(id string, db *gorm.DB) Worker {
	switch id {
	case "filing_status":
		return cron.NewFilingStatusJob(db)
	default:
		return nil
	}
}

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

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start haree-daemon: " + id)
		worker := CreateWorker(id, db)
		if worker == nil {
			fmt.Println("Unknown worker: " + id)
			continue
		}

		worker.Process()
	}
}
