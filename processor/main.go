package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"crashes/processor/cfg"
	"crashes/processor/service"
)

var Build string
var Version string

func init() {

	var cPath string
	var showVersion bool = false
	var showBuild bool = false

	flag.StringVar(&cPath, "config", "", "path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.BoolVar(&showBuild, "build", false, "show build")
	flag.Parse()

	if showVersion {
		fmt.Printf("Version: %s\n", Version)
		os.Exit(0)
	}

	if showBuild {
		fmt.Printf("Build: %s\n", Build)
		os.Exit(0)
	}

	if cPath == "" {
		flag.PrintDefaults()
		log.Fatal("Config file is not set")
	}

	conf, err := cfg.FromJson(cPath)
	if err != nil {
		log.WithError(err).
			Fatal("Error reading configuration file")
	}
	cfg.GlobalConfig = conf
	cfg.GlobalConfigPath = cPath

	level, err := log.ParseLevel(cfg.GlobalConfig.LogLevel())
	if err == nil {
		log.WithField("level", level).
			Info("Change log level")
		log.SetLevel(level)
	} else {
		log.WithError(err).Warning("Can't setup log level")
	}
}

func HandleError(err error) {
	if err != nil {
		panic(fmt.Sprintf("Error: %s", err.Error()))
	}
}

func main() {
	processor := service.ProcessorService{}
	HandleError(processor.Init(cfg.GlobalConfig))

	log.WithFields(log.Fields{
		"queue":   cfg.GlobalConfig.RabbitQueue(),
		"elastic": cfg.GlobalConfig.ElasticUrl(),
	}).Info("Processing entries")
	if err := processor.Loop(); err != nil {
		log.WithError(err).Fatal("Processing stopped")
	}
}
