package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quote-drafter/internal/ai"
	"quote-drafter/internal/app"
	"quote-drafter/internal/core"
)

var errExit = errors.New("exit")

// editor holds the quote being drafted by one REPL session.
type editor struct {
	svc    app.ApplicationService
	owner  string
	reader *bufio.Reader
	out    io.Writer
	quote  *core.Quote
}

// Run starts the interactive draft editor for owner.
// Slash commands edit the draft deterministically and autosave it; any other
// input is sent to the AI drafter and the reply is offered as the quote notes.
func Run(ctx context.Context, svc app.ApplicationService, owner string, in io.Reader, out io.Writer) error {
	e := &editor{svc: svc, owner: owner, reader: bufio.NewReader(in), out: out}

	draft := svc.LoadDraft(ctx, owner)
	e.quote = draft.Quote

	fmt.Fprintln(out, "Quote Drafter")
	if draft.Restored {
		fmt.Fprintf(out, "Restored your draft for %s (%d items).\n", displayOr(e.quote.CustomerName, "no customer"), len(e.quote.Items))
	} else {
		fmt.Fprintln(out, "Started a new draft.")
	}
	fmt.Fprintln(out, "Describe what to write in the notes, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, err := e.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return nil
			}
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := e.dispatchSlash(ctx, input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		e.draftNotes(ctx, input)
	}
}

func (e *editor) dispatchSlash(ctx context.Context, input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(e.out, "Usage: /set <field> <value>")
			fmt.Fprintf(e.out, "  Fields: %s\n", joinFields(core.QuoteFields))
			return nil
		}
		field, err := core.ParseQuoteField(args[0])
		if err != nil {
			return err
		}
		if err := core.SetQuoteField(e.quote, field, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s updated.\n", field)
		return e.autosave(ctx)

	case "add-item", "add":
		e.quote.Items = append(e.quote.Items, core.NewLineItem())
		fmt.Fprintf(e.out, "Added item %d. Use /item %d <field> <value> to fill it in.\n", len(e.quote.Items), len(e.quote.Items))
		return e.autosave(ctx)

	case "rm-item", "rm":
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /rm-item <n>")
			return nil
		}
		i, err := e.itemIndex(args[0])
		if err != nil {
			return err
		}
		e.quote.Items = append(e.quote.Items[:i], e.quote.Items[i+1:]...)
		fmt.Fprintf(e.out, "Removed item %d.\n", i+1)
		return e.autosave(ctx)

	case "item":
		if len(args) < 3 {
			fmt.Fprintln(e.out, "Usage: /item <n> <field> <value>")
			fmt.Fprintln(e.out, "  Fields: description, quantity, unit, unitPrice, tax")
			return nil
		}
		i, err := e.itemIndex(args[0])
		if err != nil {
			return err
		}
		field, err := core.ParseItemField(args[1])
		if err != nil {
			return err
		}
		if err := core.SetItemField(&e.quote.Items[i], field, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Item %d %s updated.\n", i+1, field)
		return e.autosave(ctx)

	case "discount":
		if len(args) < 2 {
			fmt.Fprintln(e.out, "Usage: /discount <percentage|fixed> <value>")
			return nil
		}
		if err := core.SetQuoteField(e.quote, core.FieldDiscountType, args[0]); err != nil {
			return err
		}
		if err := core.SetQuoteField(e.quote, core.FieldDiscountValue, args[1]); err != nil {
			return err
		}
		printTotals(e.out, e.quote)
		return e.autosave(ctx)

	case "customer":
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /customer <name>")
			return nil
		}
		c, err := e.svc.FindCustomer(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		c.ApplyToQuote(e.quote)
		fmt.Fprintf(e.out, "Customer set to %s.\n", c.CustomerName)
		return e.autosave(ctx)

	case "profile":
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /profile <name>")
			return nil
		}
		p, err := e.svc.FindProfile(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		p.ApplyToQuote(e.quote)
		fmt.Fprintf(e.out, "Company set to %s.\n", p.CompanyName)
		return e.autosave(ctx)

	case "totals", "t":
		printTotals(e.out, e.quote)

	case "show", "s":
		PrintQuote(e.out, e.quote)

	case "save":
		res, err := e.svc.SaveQuote(ctx, e.quote)
		if err != nil {
			return err
		}
		e.quote = res.Quote
		fmt.Fprintf(e.out, "Quote %s saved (ID: %s).\n", res.Quote.QuoteNumber, res.Quote.ID)
		return e.autosave(ctx)

	case "new":
		profileID := ""
		if len(args) > 0 {
			p, err := e.svc.FindProfile(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			profileID = p.ID
		}
		res, err := e.svc.NewQuote(ctx, profileID)
		if err != nil {
			return err
		}
		e.quote = res.Quote
		fmt.Fprintln(e.out, "Started a new draft.")
		return e.autosave(ctx)

	case "help", "h":
		printHelp(e.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(e.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

// autosave stores the working quote as the owner's draft after every change.
func (e *editor) autosave(ctx context.Context) error {
	if err := e.svc.SaveDraft(ctx, e.owner, e.quote); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}

func (e *editor) itemIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(e.quote.Items) {
		return 0, fmt.Errorf("no item %q: the quote has %d items", arg, len(e.quote.Items))
	}
	return n - 1, nil
}

// draftNotes asks the AI drafter for text and offers it as the quote notes.
func (e *editor) draftNotes(ctx context.Context, prompt string) {
	fmt.Fprintln(e.out, "[AI] Drafting...")
	text, err := e.svc.DraftText(ctx, ai.DraftTextRequest{
		Prompt:       prompt,
		CompanyName:  e.quote.CompanyName,
		CustomerName: e.quote.CustomerName,
		Currency:     e.quote.Currency,
		Items:        e.quote.Items,
		Notes:        e.quote.Notes,
	})
	if err != nil {
		fmt.Fprintf(e.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(e.out, "\n[AI]:\n%s\n", text)
	fmt.Fprint(e.out, "\nUse this as the quote notes? (y/n): ")
	choice, _ := e.reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(e.out, "Discarded.")
		return
	}
	e.quote.Notes = text
	if err := e.autosave(ctx); err != nil {
		fmt.Fprintf(e.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(e.out, "Notes updated.")
}

func joinFields(fields []core.QuoteField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func displayOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
