package main

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

func ShowCommand() cli.Command {
	return cli.Command{
		Name:      "show",
		Usage:     "print a stored entry",
		ArgsUsage: "<id>",
		Action:    show,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  URL,
				Value: "http://127.0.0.1:9200",
			},
		},
	}
}

func show(c *cli.Context) error {
	if c.NArg() == 0 {
		fmt.Fprintln(c.App.Writer, "Empty entry id")
		return fmt.Errorf("Empty entry id")
	}
	id := c.Args().Get(0)

	store, err := openStore(c.String(URL))
	if err != nil {
		return err
	}

	entry, err := store.GetReport(id)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"id":    id,
		}).Error("Can't load entry")
		return err
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
