package main

import (
	"os"
	"time"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"crashes/common/utils"
	"crashes/reporter/builder"
	"crashes/reporter/cfg"
)

const (
	CONFIG  = `config`
	MESSAGE = `message`
	STACK   = `stack`
	TAG     = `tag`
	WAIT    = `wait`
)

var ErrNotDelivered = errors.New("Report delivery did not finish in time")

func SendCommand() cli.Command {
	return cli.Command{
		Name:   "send",
		Usage:  "send one message report",
		Action: send,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  CONFIG,
				Usage: "path to reporter configuration file",
			},
			cli.StringFlag{
				Name:  MESSAGE,
				Value: "Test report from crashes-cli",
			},
			cli.StringFlag{
				Name:  STACK,
				Usage: "file with the stack trace, one frame per line",
			},
			cli.StringSliceFlag{
				Name: TAG,
			},
			cli.DurationFlag{
				Name:  WAIT,
				Value: 5 * time.Second,
			},
		},
	}
}

func send(c *cli.Context) error {
	conf, err := cfg.FromJson(c.String(CONFIG))
	if err != nil {
		return err
	}

	if level, err := log.ParseLevel(conf.LogLevel()); err == nil {
		log.WithField("level", level).Debug("Change log level")
		log.SetLevel(level)
	}

	stack, err := readStack(c.String(STACK))
	if err != nil {
		return err
	}

	client := cfg.NewClient(conf)
	client.SendMessage(utils.Trim(c.String(MESSAGE)), stack, c.StringSlice(TAG), map[string]interface{}{
		"source": "crashes-cli",
	})

	if !client.Flush(c.Duration(WAIT)) {
		return ErrNotDelivered
	}
	log.WithField("endpoint", client.Endpoint()).Info("Report sent")
	return nil
}

func readStack(path string) (string, error) {
	if path == "" {
		return builder.FormatStack(errors.New("").StackFrames()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"path":  path,
		}).Error("Can't read stack trace file")
		return "", err
	}
	return string(data), nil
}
