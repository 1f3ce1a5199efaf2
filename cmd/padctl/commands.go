package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/padlinkapp/padlink-server/internal/journal"
)

func newServersCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List registered Etherpad servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			servers, err := e.servers.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No servers registered.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tBASE URL")
			for _, s := range servers {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Title, s.BaseURL)
			}
			return w.Flush()
		},
	}
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <server-id>",
		Short: "Verify a server answers and accepts its API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			server, err := e.servers.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := e.servers.Check(cmd.Context(), server.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): ok\n", server.Title, server.APIURL())
			return nil
		},
	}
}

func newLinkCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "link <pad-id>",
		Short: "Print the browser link of a pad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			view, err := e.pads.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Link)
			return nil
		},
	}
}

func newSyncAuthorCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-author <author-id>",
		Short: "Add an author to every pad group its user can reach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			added, err := e.authors.SyncGroups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(added) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Author already in sync.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added to %d group(s): %s\n", len(added), strings.Join(added, ", "))
			return nil
		},
	}
}

func newJournalCmd(flags *globalFlags) *cobra.Command {
	var (
		limit    int
		entity   string
		serverID string
		outcome  string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent Etherpad mutations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			entries, err := e.journals.List(cmd.Context(), journal.Filter{
				Entity:   entity,
				ServerID: serverID,
				Outcome:  journal.Outcome(outcome),
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AT\tOP\tENTITY\tREMOTE ID\tOUTCOME\tERROR")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					entry.At.Local().Format(time.DateTime),
					entry.Op,
					entityRef(entry),
					entry.RemoteID,
					entry.Outcome,
					entry.Error,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	cmd.Flags().StringVar(&entity, "entity", "", "Only entries about group, author or pad")
	cmd.Flags().StringVar(&serverID, "server", "", "Only entries for this server ID")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Only entries with outcome ok, not_found or failed")

	cmd.AddCommand(newJournalPruneCmd(flags))
	return cmd
}

func newJournalPruneCmd(flags *globalFlags) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop journal entries older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.journals.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of removed entries")
	return cmd
}

func entityRef(e journal.Entry) string {
	if e.EntityID == "" {
		return e.Entity
	}
	return e.Entity + ":" + e.EntityID
}
