package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/backup"
)

func newBackupCommand(a *app) *cobra.Command {
	var bucket, prefix, region, endpoint string

	client := func(cmd *cobra.Command) (*backup.Client, error) {
		cfg := a.cfg.Backup
		if bucket != "" {
			cfg.Bucket = bucket
		}
		if cmd.Flags().Changed("prefix") {
			cfg.Prefix = prefix
		}
		if region != "" {
			cfg.Region = region
		}
		if endpoint != "" {
			cfg.Endpoint = endpoint
		}
		return backup.New(cmd.Context(), backup.Config{
			Bucket:          cfg.Bucket,
			Prefix:          cfg.Prefix,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			UsePathStyle:    cfg.UsePathStyle,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		}, a.logger, a.metrics)
	}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Push or pull store snapshots to and from S3",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&bucket, "bucket", "", "S3 bucket (overrides backup.bucket)")
	pf.StringVar(&prefix, "prefix", "", "Object key prefix (overrides backup.prefix)")
	pf.StringVar(&region, "region", "", "AWS region")
	pf.StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL")

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Upload the store snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}
			key, err := c.Push(cmd.Context(), a.cfg.Store.Dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "pushed %s\n", key)
			return nil
		},
	}

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the store snapshot, replacing the local one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}
			path, err := c.Pull(cmd.Context(), a.cfg.Store.Dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "pulled %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(pushCmd, pullCmd)
	return cmd
}
