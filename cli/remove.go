package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"crashes/common/data/base"
	"crashes/common/format/report"
)

const (
	AGE  = `older`
	SIZE = `count`
	SHOW = `show_only`
)

// EntryStore is the part of the entries repository used by the cli.
type EntryStore interface {
	GetReport(id string) (*report.Entry, error)
	FindOlder(older string, size int) ([]report.Entry, error)
	DeleteReport(id string) error
}

type Callback func(c *cli.Context, store EntryStore) error

var rmCallbacks = map[string]Callback{
	"entries": rmEntries,
}

// openStore connects to the repository at url. Replaced in tests.
var openStore = func(url string) (EntryStore, error) {
	rep, err := base.NewRepository(url, base.NewMemory())
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"url":   url,
		}).Error("Can't create ElasticSearch client")
		return nil, err
	}
	return rep, nil
}

func RemoveCommand() cli.Command {
	return cli.Command{
		Name:    "remove",
		Aliases: []string{"rm"},
		Usage:   "remove stored entries",
		Action:  remove,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  AGE,
				Value: "16d",
			},
			cli.StringFlag{
				Name:  URL,
				Value: "http://127.0.0.1:9200",
			},
			cli.IntFlag{
				Name:  SIZE,
				Value: 1000,
			},
			cli.BoolFlag{
				Name: SHOW,
			},
		},
	}
}

func remove(c *cli.Context) error {
	if c.NArg() == 0 {
		message := `Empty task, available values:
	entries`
		fmt.Fprintln(c.App.Writer, message)
		return fmt.Errorf("Empty task")
	}

	task := c.Args().Get(0)
	cb, ok := rmCallbacks[task]
	if !ok {
		fmt.Fprintf(c.App.Writer, "Unknown task %s\n", task)
		return fmt.Errorf("Unknown task %s", task)
	}

	store, err := openStore(c.String(URL))
	if err != nil {
		return err
	}
	return cb(c, store)
}

func rmEntries(c *cli.Context, store EntryStore) error {
	older := c.String(AGE)
	size := c.Int(SIZE)
	showOnly := c.Bool(SHOW)

	entries, err := store.FindOlder(older, size)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fields := log.Fields{
			"id":        e.Id,
			"signature": e.Signature,
			"date":      e.DateAdded,
		}

		if showOnly {
			log.WithFields(fields).Info("Entry")
			continue
		}

		if err := store.DeleteReport(e.Id); err != nil {
			log.WithFields(log.Fields{
				"error": err,
				"id":    e.Id,
			}).Error("Can't remove document in Elastic")

			return err
		}
		log.WithFields(fields).Info("Removed entry")
	}

	return nil
}
