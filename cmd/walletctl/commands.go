package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Aidin1998/wallet_system/internal/export"
	"github.com/Aidin1998/wallet_system/internal/session"
	"github.com/Aidin1998/wallet_system/internal/walletapi"
	"github.com/Aidin1998/wallet_system/pkg/validation"
)

var errOperationFailed = errors.New("operation failed")

func runSetup(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("setup", "--name NAME [--balance AMOUNT]")
	name := fs.String("name", "", "wallet name")
	balance := fs.String("balance", "", "initial balance (default 0)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.session.PersistedID(ctx)
	if err != nil {
		return err
	}
	if id != "" {
		return fmt.Errorf("wallet %s is already set up, run `walletctl reset` first", id)
	}

	form := validation.Form{
		validation.FieldWalletName: a.validator.Sanitize(*name),
		validation.FieldBalance:    *balance,
	}
	if err := a.validator.ValidateSchema(validation.SchemaWalletSetup, form); err != nil {
		return err
	}

	ok, err := a.session.SetupWallet(ctx, form[validation.FieldWalletName], *balance)
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}
	w, _ := a.session.Wallet()
	return printWallet(a.stdout, w.ID, w.Name, w.Balance, w.Date)
}

func runShow(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("show", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.activeWallet(ctx); err != nil {
		return err
	}
	w, _ := a.session.Wallet()
	return printWallet(a.stdout, w.ID, w.Name, w.Balance, w.Date)
}

func runTransact(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("transact", "--amount AMOUNT --description TEXT [--type credit|debit]")
	amount := fs.String("amount", "", "amount to move, always positive")
	description := fs.String("description", "", "what the transaction is for")
	kind := fs.String("type", "credit", "credit adds funds, debit removes them")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *kind != "credit" && *kind != "debit" {
		return fmt.Errorf("--type must be credit or debit, got %q", *kind)
	}

	form := validation.Form{
		validation.FieldAmount:      *amount,
		validation.FieldDescription: a.validator.Sanitize(*description),
	}
	if err := a.validator.ValidateSchema(validation.SchemaTransaction, form); err != nil {
		return err
	}
	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return err
	}
	if *kind == "debit" {
		value = value.Neg()
	}

	id, err := a.activeWallet(ctx)
	if err != nil {
		return err
	}
	if !a.session.UpdateBalance(ctx, id, value, form[validation.FieldDescription]) {
		return errOperationFailed
	}
	w, _ := a.session.Wallet()
	_, err = fmt.Fprintf(a.stdout, "Balance: %s\n", w.Balance.StringFixed(4))
	return err
}

func runTransactions(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("transactions", "[--skip N] [--limit N] [--sort-by date|amount] [--order asc|desc]")
	skip := fs.Int("skip", 0, "entries to skip")
	limit := fs.Int("limit", 0, "page size (default from preferences)")
	sortBy := fs.String("sort-by", "", "date or amount (default from preferences)")
	order := fs.String("order", "", "asc or desc (default from preferences)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prefs, err := a.session.Preferences(ctx)
	if err != nil {
		return err
	}
	q := walletapi.TransactionQuery{
		Skip:   *skip,
		Limit:  prefs.PageSize,
		SortBy: prefs.SortBy,
		Order:  walletapi.SortOrder(prefs.Order),
	}
	if fs.Changed("limit") {
		q.Limit = *limit
	}
	if fs.Changed("sort-by") {
		q.SortBy = *sortBy
	}
	if fs.Changed("order") {
		q.Order = walletapi.SortOrder(*order)
	}

	id, err := a.activeWallet(ctx)
	if err != nil {
		return err
	}
	list, ok := a.client.GetTransactions(ctx, id, q).Value()
	if !ok {
		return errOperationFailed
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
	for _, r := range export.Rows(list.Transactions) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Date, r.Type, r.Amount, r.Balance, r.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Showing %d of %d\n", len(list.Transactions), list.Total)
	return err
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("export", "[--format csv|json|yaml] [--out FILE]")
	format := fs.String("format", "csv", "csv, json or yaml")
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	id, err := a.activeWallet(ctx)
	if err != nil {
		return err
	}
	list, ok := a.client.GetAllTransactions(ctx, id).Value()
	if !ok {
		return errOperationFailed
	}

	var w io.Writer = a.stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if err := export.Write(w, f, list.Transactions); err != nil {
		return err
	}
	if *out != "" {
		fmt.Fprintf(a.stderr, "Exported %d transactions to %s\n", len(list.Transactions), *out)
	}
	return nil
}

func runSummary(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("summary", "[--format json|yaml]")
	format := fs.String("format", "yaml", "json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	id, err := a.activeWallet(ctx)
	if err != nil {
		return err
	}
	list, ok := a.client.GetAllTransactions(ctx, id).Value()
	if !ok {
		return errOperationFailed
	}
	return export.WriteSummary(a.stdout, f, export.Summarize(list.Transactions))
}

func runPrefs(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("prefs", "[--page-size N] [--sort-by date|amount] [--order asc|desc]")
	pageSize := fs.Int("page-size", 0, "transactions per page")
	sortBy := fs.String("sort-by", "", "date or amount")
	order := fs.String("order", "", "asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prefs, err := a.session.Preferences(ctx)
	if err != nil {
		return err
	}
	if fs.NFlag() > 0 {
		if fs.Changed("page-size") {
			prefs.PageSize = *pageSize
		}
		if fs.Changed("sort-by") {
			prefs.SortBy = *sortBy
		}
		if fs.Changed("order") {
			prefs.Order = *order
		}
		if err := a.session.SavePreferences(ctx, prefs); err != nil {
			return err
		}
	}
	return printPreferences(a.stdout, prefs)
}

func runReset(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("reset", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.session.ClearWallet(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, "Wallet forgotten. Run `walletctl setup` to create a new one.")
	return err
}

func printWallet(w io.Writer, id, name string, balance decimal.Decimal, created string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", id)
	fmt.Fprintf(tw, "Name:\t%s\n", name)
	fmt.Fprintf(tw, "Balance:\t%s\n", balance.StringFixed(4))
	fmt.Fprintf(tw, "Created:\t%s\n", created)
	return tw.Flush()
}

func printPreferences(w io.Writer, p session.Preferences) error {
	_, err := fmt.Fprintf(w, "page-size=%d sort-by=%s order=%s\n", p.PageSize, p.SortBy, p.Order)
	return err
}
