package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/leadfunnel/internal/infra/http/middleware"
)

type rootOptions struct {
	apiURL string
	token  string
	secret string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "leadctl",
		Short:         "Operate the lead funnel admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("LEADFUNNEL_API", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LEADFUNNEL_TOKEN"), "admin bearer token")
	root.PersistentFlags().StringVar(&opts.secret, "secret", os.Getenv("ADMIN_JWT_SECRET"), "signing secret used when no token is given")

	root.AddCommand(
		newTokenCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newOutreachCmd(opts),
		newRespondCmd(opts),
		newConvertCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// client issues a short-lived token from the secret when none was passed.
func (o *rootOptions) client() (*adminClient, error) {
	token := o.token
	if token == "" {
		if o.secret == "" {
			return nil, fmt.Errorf("either --token or --secret is required")
		}
		var err error
		token, err = middleware.IssueAdminToken([]byte(o.secret), "leadctl", 15*time.Minute, time.Now())
		if err != nil {
			return nil, err
		}
	}
	return newAdminClient(o.apiURL, token), nil
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed admin token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.secret == "" {
				return fmt.Errorf("--secret or ADMIN_JWT_SECRET is required")
			}
			token, err := middleware.IssueAdminToken([]byte(opts.secret), subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			leads, err := c.ListLeads(cmd.Context(), status)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSCORE\tPRIORITY\tSOURCE")
			for _, l := range leads {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Status, l.Score, l.Priority, l.Source)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only leads in this status")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show funnel statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newOutreachCmd(opts *rootOptions) *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "outreach <lead-id>",
		Short: "Send the first outreach message to a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			res, err := c.Outreach(cmd.Context(), args[0], channel)
			if err != nil {
				return err
			}
			if res.Blocked {
				fmt.Fprintf(cmd.OutOrStdout(), "blocked: %s\n", res.Reason)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent via %s\n", res.Channel)
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "whatsapp", "whatsapp, email or linkedin")
	return cmd
}

func newRespondCmd(opts *rootOptions) *cobra.Command {
	var negative bool
	cmd := &cobra.Command{
		Use:   "respond <lead-id>",
		Short: "Record a reply to outreach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			res, err := c.Respond(cmd.Context(), args[0], !negative)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s (demo link sent: %t)\n", res.Lead.ID, res.Lead.Status, res.DemoLinkSent)
			return nil
		},
	}
	cmd.Flags().BoolVar(&negative, "negative", false, "the lead declined")
	return cmd
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <lead-id>",
		Short: "Mark a demo lead as converted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			lead, err := c.Convert(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", lead.ID, lead.Status)
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every lead as an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if output == "" {
				output = "leads-" + time.Now().UTC().Format("20060102") + ".xlsx"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := c.Export(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
