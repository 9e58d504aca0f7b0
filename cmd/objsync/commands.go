package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/objsync/internal/storage"
	"github.com/andresuchdata/objsync/pkg/logger"
)

func newGateway(c *cli.Context) (*storage.Gateway, string, error) {
	bucket := c.String("bucket")
	if bucket == "" {
		return nil, "", fmt.Errorf("bucket must be provided")
	}

	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  c.String("endpoint"),
		AccessKey: c.String("access-key"),
		SecretKey: c.String("secret-key"),
		Region:    c.String("region"),
		UseSSL:    c.Bool("use-ssl"),
	})
	if err != nil {
		return nil, "", err
	}

	return storage.NewGateway(store, logger.Log), bucket, nil
}

func runCheck(c *cli.Context) error {
	gw, bucket, err := newGateway(c)
	if err != nil {
		return err
	}

	if key := c.String("key"); key != "" {
		exists, err := gw.ObjectExists(c.Context, bucket, key)
		if err != nil {
			return fmt.Errorf("failed to check object %s:%s: %w", bucket, key, err)
		}
		fmt.Println(exists)
		return nil
	}

	fmt.Println(gw.BucketExists(c.Context, bucket))
	return nil
}

func runList(c *cli.Context) error {
	gw, bucket, err := newGateway(c)
	if err != nil {
		return err
	}

	keys, err := gw.ListObjects(c.Context, bucket, c.String("prefix"), c.String("suffix"))
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func runDownload(c *cli.Context) error {
	gw, bucket, err := newGateway(c)
	if err != nil {
		return err
	}

	results, err := gw.DownloadDir(c.Context, bucket, c.String("prefix"), c.String("dest"), c.String("suffix"))
	if err != nil {
		return err
	}
	summarize("download", results)
	return nil
}

func runDownloadLatest(c *cli.Context) error {
	gw, bucket, err := newGateway(c)
	if err != nil {
		return err
	}

	results, err := gw.DownloadHighestNumberedFile(
		c.Context, bucket, c.String("prefix"), c.String("dest"),
		c.String("suffix"), c.String("contains"),
	)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		logger.Log.Info().Str("prefix", c.String("prefix")).Msg("no matching files found")
		return nil
	}
	summarize("download", results)
	return nil
}

func runUpload(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file must be provided")
	}

	gw, bucket, err := newGateway(c)
	if err != nil {
		return err
	}

	results := gw.UploadFiles(c.Context, bucket, c.Args().Slice(), c.String("dest-prefix"), c.Bool("notify-exists"))
	summarize("upload", results)
	return nil
}

// summarize reports the batch outcome. Per-item failures are best-effort
// by contract, so they show up here rather than as a non-zero exit.
func summarize(op string, results []storage.TransferResult) {
	var done, skipped, failed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Skipped:
			skipped++
		default:
			done++
		}
	}
	logger.Log.Info().
		Str("op", op).
		Int("transferred", done).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("batch finished")
}
