package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/objsync/internal/config"
	"github.com/andresuchdata/objsync/pkg/logger"
)

func storageFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "S3-compatible endpoint (host:port)",
			Value:   cfg.Storage.Endpoint,
			EnvVars: []string{"STORAGE_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "access-key",
			Usage:   "Storage access key",
			Value:   cfg.Storage.AccessKey,
			EnvVars: []string{"STORAGE_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "Storage secret key",
			Value:   cfg.Storage.SecretKey,
			EnvVars: []string{"STORAGE_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "Bucket to operate on",
			Value:   cfg.Storage.Bucket,
			EnvVars: []string{"STORAGE_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Storage region",
			Value:   cfg.Storage.Region,
			EnvVars: []string{"STORAGE_REGION"},
		},
		&cli.BoolFlag{
			Name:    "use-ssl",
			Usage:   "Use TLS when talking to the endpoint",
			Value:   cfg.Storage.UseSSL,
			EnvVars: []string{"STORAGE_USE_SSL"},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	app := &cli.App{
		Name:  "objsync",
		Usage: "Check, list, download and upload objects in an S3-compatible bucket",
		Flags: storageFlags(cfg),
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Check that the bucket (or a single object) exists",
				Flags: append(storageFlags(cfg),
					&cli.StringFlag{
						Name:  "key",
						Usage: "Object key to check instead of the bucket",
					},
				),
				Action: runCheck,
			},
			{
				Name:  "list",
				Usage: "List object keys under a prefix",
				Flags: append(storageFlags(cfg),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Key prefix to list",
					},
					&cli.StringFlag{
						Name:  "suffix",
						Usage: "Keep only keys ending with this suffix (case-insensitive)",
					},
				),
				Action: runList,
			},
			{
				Name:  "download",
				Usage: "Download all objects under a prefix",
				Flags: append(storageFlags(cfg),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Key prefix to download",
					},
					&cli.StringFlag{
						Name:  "suffix",
						Usage: "Keep only keys ending with this suffix (case-insensitive)",
					},
					&cli.StringFlag{
						Name:    "dest",
						Usage:   "Destination directory",
						Value:   cfg.App.DownloadDir,
						EnvVars: []string{"APP_DOWNLOAD_DIR"},
					},
				),
				Action: runDownload,
			},
			{
				Name:  "download-latest",
				Usage: "Download the highest-numbered file under a prefix",
				Flags: append(storageFlags(cfg),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Key prefix to search",
					},
					&cli.StringFlag{
						Name:  "suffix",
						Usage: "Keep only keys ending with this suffix (case-insensitive)",
					},
					&cli.StringFlag{
						Name:  "contains",
						Usage: "Keep only basenames containing this substring (case-insensitive)",
					},
					&cli.StringFlag{
						Name:    "dest",
						Usage:   "Destination directory",
						Value:   cfg.App.DownloadDir,
						EnvVars: []string{"APP_DOWNLOAD_DIR"},
					},
				),
				Action: runDownloadLatest,
			},
			{
				Name:      "upload",
				Usage:     "Upload local files under a destination prefix",
				ArgsUsage: "FILE [FILE...]",
				Flags: append(storageFlags(cfg),
					&cli.StringFlag{
						Name:  "dest-prefix",
						Usage: "Destination key prefix",
					},
					&cli.BoolFlag{
						Name:  "notify-exists",
						Usage: "Log a notice for files already present remotely",
					},
				),
				Action: runUpload,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}
