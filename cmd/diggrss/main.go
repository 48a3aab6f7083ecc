package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss"
	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/feed"
	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/proc"
	"github.com/pixelnated/digg-daily-rss/internal/configs"
)

var opts struct {
	Conf   string `short:"c" long:"conf" env:"DIGGRSS_CONF" default:"diggrss.yml" description:"config file (yml)"`
	DB     string `short:"d" long:"db" env:"DIGGRSS_DB" description:"episode cache location, overrides config"`
	Output string `short:"o" long:"output" default:"feed.xml" description:"output feed filename"`
	Limit  int    `short:"l" long:"limit" default:"50" description:"max episodes to include, 0 for all"`
	Verify bool   `long:"verify" description:"check audio urls are reachable"`
	Probe  bool   `long:"probe" description:"measure real episode durations from the cdn"`
	Upload bool   `short:"u" long:"upload" description:"upload feed to cloud storage"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"show debug info"`
}

func checkFileExists(filepath string) bool {
	if _, err := os.Stat(filepath); errors.Is(err, os.ErrNotExist) {
		return false
	}

	return true
}

func main() {
	p := flags.NewParser(&opts, flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		p.WriteHelp(os.Stderr)
		os.Exit(2)
	}

	if opts.Dbg {
		log.Setup(log.Debug, log.Msec)
	}

	configFile := opts.Conf

	if !checkFileExists(configFile) {
		configFile = "configs/diggrss.yaml"

		if !checkFileExists(configFile) {
			log.Fatalf("[ERROR] config file not found")
		}
	}

	conf, err := configs.Load(configFile)
	if err != nil {
		log.Fatalf("[ERROR] can't load config %s, %v", opts.Conf, err)
	}

	if opts.DB != "" {
		conf.Cache.Path = opts.DB
	}

	store, err := proc.NewStore(conf.Cache.Backend, conf.Cache.Path)
	if err != nil {
		log.Fatalf("[ERROR] can't create episode store, %v", err)
	}

	client := proc.NewClient(conf.API.Endpoint, conf.API.UserAgent,
		time.Duration(conf.API.Timeout)*time.Second, store)

	app, err := diggrss.NewApplication(conf, client, feed.NewGenerator(conf))
	if err != nil {
		log.Fatalf("[ERROR] can't create app, %v", err)
	}

	if opts.Upload {
		s3client, err := proc.NewS3Client(
			conf.CloudStorage.EndPointURL,
			conf.CloudStorage.Secrets.Key,
			conf.CloudStorage.Secrets.Secret,
			true)
		if err != nil {
			log.Fatalf("[ERROR] can't create s3client instance, %v", err)
		}
		app.Publisher = &proc.S3Store{Client: s3client, Location: conf.CloudStorage.Region, Bucket: conf.CloudStorage.Bucket}
	}

	ctx := context.Background()

	episodes := app.Episodes(ctx, opts.Limit)
	log.Printf("[INFO] found %d episodes", len(episodes))

	if opts.Verify {
		app.VerifyEpisodes(ctx, episodes)
	}
	if opts.Probe {
		app.ProbeDurations(ctx, episodes)
	}

	path, err := app.SaveFeed(episodes, opts.Output)
	if err != nil {
		log.Fatalf("[ERROR] can't save feed, %v", err)
	}
	log.Printf("[INFO] feed saved to %s", path)

	if opts.Upload {
		if err := app.PublishFeed(ctx, path); err != nil {
			log.Fatalf("[ERROR] can't publish feed, %v", err)
		}
	}
}
