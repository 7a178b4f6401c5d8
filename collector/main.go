package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"crashes/collector/api"
	"crashes/collector/cfg"
)

var Build string
var Version string

func loadConfig() {
	var cPath string
	var showVersion, showBuild bool

	flag.StringVar(&cPath, "config", "", "path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.BoolVar(&showBuild, "build", false, "show build")
	flag.Parse()

	switch {
	case showVersion:
		fmt.Printf("Version: %s\n", Version)
		os.Exit(0)
	case showBuild:
		fmt.Printf("Build: %s\n", Build)
		os.Exit(0)
	case cPath == "":
		flag.PrintDefaults()
		log.Fatal("Config file is not set")
	}

	conf, err := cfg.FromJson(cPath)
	if err != nil {
		log.WithError(err).Fatal("Error reading configuration file")
	}
	cfg.GlobalConfig = conf
	cfg.GlobalConfigPath = cPath

	if err = setLevel(conf.LogLevel()); err != nil {
		log.WithError(err).Warning("Can't setup log level")
	}
}

func main() {
	loadConfig()

	var service api.GinCollectorService
	if err := service.Init(); err != nil {
		log.WithError(err).Fatal("Can't start collector")
	}
	go func() {
		if err := service.Start(); err != nil {
			log.WithError(err).Fatal("Collector stopped")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)
	for range signals {
		reload()
	}
}

func reload() {
	cfg.GlobalConfigMutex.Lock()
	defer cfg.GlobalConfigMutex.Unlock()

	log.Info("Try to reload configuration")
	conf, err := cfg.FromJson(cfg.GlobalConfigPath)
	if err != nil {
		log.WithError(err).
			Error("Error reading configuration file")
		return
	}

	if conf.LogLevel() != cfg.GlobalConfig.LogLevel() {
		if err := setLevel(conf.LogLevel()); err != nil {
			log.WithError(err).Warn("Can't parse level")
			return
		}
	}

	cfg.GlobalConfig = conf
	log.Info("Reloaded configuration")
}

func setLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"old level": log.GetLevel(),
		"new level": level,
	}).Info("Change log level")
	log.SetLevel(level)
	return nil
}
