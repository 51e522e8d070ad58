package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/notify"
)

func newWatchCommand(a *app) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print pass events published by a running import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = a.cfg.Notify.URL
			}
			if url == "" {
				return errors.New("a notify URL is required (--notify or OWLGRAPH_NOTIFY_URL)")
			}

			s, err := notify.NewSubscriber(url)
			if err != nil {
				return err
			}
			defer s.Close()

			enc := json.NewEncoder(a.stdout)
			ctx := cmd.Context()
			for ctx.Err() == nil {
				ev, err := s.Receive(500 * time.Millisecond)
				if errors.Is(err, notify.ErrTimeout) {
					continue
				}
				if err != nil {
					return err
				}
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("failed to write event: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "notify", "", "nanomsg URL of the import's publisher")
	return cmd
}
