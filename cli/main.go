package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

const (
	URL = `url`
)

func init() {
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stdout)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "crashes-cli"
	app.Usage = "command line utils for crash reports"

	app.Commands = []cli.Command{
		SendCommand(),
		RemoveCommand(),
		ShowCommand(),
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
