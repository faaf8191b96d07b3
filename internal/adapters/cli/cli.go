package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quote-drafter/internal/adapters/repl"
	"quote-drafter/internal/ai"
	"quote-drafter/internal/app"
)

const Version = "0.3.0"

// Opener builds the application service for one command run. storeDriver
// overrides the configured store when non-empty.
type Opener func(ctx context.Context, storeDriver string) (app.ApplicationService, func(), error)

type runtime struct {
	open        Opener
	storeDriver string
	svc         app.ApplicationService
	closeFn     func()
}

func (r *runtime) service(cmd *cobra.Command) (app.ApplicationService, error) {
	if r.svc != nil {
		return r.svc, nil
	}
	svc, closeFn, err := r.open(cmd.Context(), r.storeDriver)
	if err != nil {
		return nil, fmt.Errorf("open application: %w", err)
	}
	r.svc, r.closeFn = svc, closeFn
	return svc, nil
}

func (r *runtime) close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}

// Execute runs the command line in args against the service built by open.
func Execute(ctx context.Context, open Opener, args []string) error {
	rt := &runtime{open: open}
	defer rt.close()

	root := newRootCommand(rt)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "quote-drafter",
		Short: "Draft, price and export customer quotations",
		Long: `quote-drafter manages quotations stored in the configured document store.

Run without a subcommand to open the interactive draft editor.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, rt, "")
		},
	}
	root.PersistentFlags().StringVar(&rt.storeDriver, "store", "", "Store driver override (file, postgres, memory)")

	root.AddCommand(
		listCmd(rt),
		showCmd(rt),
		totalsCmd(rt),
		exportCmd(rt),
		statusCmd(rt),
		reviseCmd(rt),
		duplicateCmd(rt),
		customersCmd(rt),
		profilesCmd(rt),
		seedCmd(rt),
		aiCmd(rt),
		replCmd(rt),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "quote-drafter version %s\n", Version)
			},
		},
	)
	return root
}

func listCmd(rt *runtime) *cobra.Command {
	var req app.ListQuotesRequest
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved quotes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.ListQuotes(cmd.Context(), req)
			if err != nil {
				return err
			}
			printQuoteList(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "Match quote number or customer name")
	cmd.Flags().StringVar(&req.Status, "status", "", "Only quotes with this status")
	cmd.Flags().StringVar(&req.SortBy, "sort", "date", "Sort by date, amount, customer or updated")
	cmd.Flags().BoolVar(&req.Desc, "desc", false, "Sort descending")
	return cmd
}

func showCmd(rt *runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <quote-id>",
		Short: "Show one quote with its items and totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.GetQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			repl.PrintQuote(cmd.OutOrStdout(), result.Quote)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the quote as JSON")
	return cmd
}

func totalsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "totals [file.json]",
		Short: "Price a quote JSON document without saving it (reads stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				body []byte
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				body, err = os.ReadFile(args[0])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read quote: %w", err)
			}
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.CalculateTotals(cmd.Context(), body)
			if err != nil {
				return err
			}
			printTotals(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func exportCmd(rt *runtime) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <quote-id>",
		Short: "Write a quote as a PDF or HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			var doc *app.DocumentResult
			switch strings.ToLower(format) {
			case "pdf":
				doc, err = svc.RenderQuotePDF(cmd.Context(), args[0])
			case "html":
				doc, err = svc.RenderQuoteHTML(cmd.Context(), args[0])
			default:
				return fmt.Errorf("unknown format %q: use pdf or html", format)
			}
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = doc.Filename
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, doc.Filename)
			}
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes).\n", path, len(doc.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format: pdf or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory (default: <quote number>.<format>)")
	return cmd
}

func statusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status <quote-id> <Draft|Sent|Approved|Rejected|Revised>",
		Short: "Change the status of a quote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.SetQuoteStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quote %s is now %s.\n", result.Quote.QuoteNumber, result.Quote.Status)
			return nil
		},
	}
}

func reviseCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "revise <quote-id>",
		Short: "Create a Draft revision and mark the original Revised",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.ReviseQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revision %s created (ID: %s). %s is now %s.\n",
				result.Revision.Quote.QuoteNumber, result.Revision.Quote.ID,
				result.Original.Quote.QuoteNumber, result.Original.Quote.Status)
			return nil
		},
	}
}

func duplicateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <quote-id>",
		Short: "Copy a quote into a new unrelated Draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.DuplicateQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quote %s created (ID: %s).\n", result.Quote.QuoteNumber, result.Quote.ID)
			return nil
		},
	}
}

func customersCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "customers",
		Short: "List saved customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			customers, err := svc.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}
			printCustomers(cmd.OutOrStdout(), customers)
			return nil
		},
	}
}

func profilesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List saved company profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			profiles, err := svc.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			printProfiles(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
}

func seedCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store a sample company profile, customer and quote into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			result, err := svc.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "Store is not empty. Nothing seeded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d profiles, %d customers, %d quotes.\n",
				result.Profiles, result.Customers, result.Quotes)
			return nil
		},
	}
}

func aiCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Language model helpers",
	}

	draft := &cobra.Command{
		Use:   "draft <prompt>",
		Short: "Draft quote text from a free-text prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			text, err := svc.DraftText(cmd.Context(), ai.DraftTextRequest{Prompt: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	suggest := &cobra.Command{
		Use:   "suggest <quote-id>",
		Short: "Suggest improvements to a saved quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			q, err := svc.GetQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := svc.SuggestImprovements(cmd.Context(), q.Quote)
			if err != nil {
				return err
			}
			for i, s := range result.Suggestions {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, s)
			}
			return nil
		},
	}

	items := &cobra.Command{
		Use:   "items <job description>",
		Short: "Turn a job description into line items (printed as JSON)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd)
			if err != nil {
				return err
			}
			lines, err := svc.DraftItems(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), lines)
		},
	}

	cmd.AddCommand(draft, suggest, items)
	return cmd
}

func replCmd(rt *runtime) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Open the interactive draft editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, rt, owner)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Draft owner (default: $USER)")
	return cmd
}

func runREPL(cmd *cobra.Command, rt *runtime, owner string) error {
	svc, err := rt.service(cmd)
	if err != nil {
		return err
	}
	if owner == "" {
		owner = os.Getenv("USER")
	}
	if owner == "" {
		owner = "local"
	}
	return repl.Run(cmd.Context(), svc, owner, cmd.InOrStdin(), cmd.OutOrStdout())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
