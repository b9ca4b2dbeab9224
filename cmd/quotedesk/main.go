package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"quotedesk/internal/config"
	"quotedesk/internal/connectors"
	gmailconnector "quotedesk/internal/connectors/gmail"
	imapconnector "quotedesk/internal/connectors/imap"
	"quotedesk/internal/extract"
	"quotedesk/internal/ingest"
	"quotedesk/internal/listener"
	"quotedesk/internal/logging"
	"quotedesk/internal/pipeline"
	"quotedesk/internal/pricebook"
	"quotedesk/internal/quote"
	"quotedesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		inbox := fs.String("inbox", cfg.InboxDir, "inbox directory with .txt/.eml inquiries")
		data := fs.String("data", cfg.DataDir, "output data directory")
		rules := fs.String("rules", cfg.RulesDir, "directory with price_list.json, discount_rules.json, settings.json")
		_ = fs.Parse(os.Args[2:])

		book, err := pricebook.Load(*rules)
		must(err)
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		processor := pipeline.NewProcessingService(db, *data, book)
		summary, err := processor.ProcessInbox(*inbox)
		must(err)
		fmt.Printf("process done processed=%d pending=%d skipped=%d errors=%d\n",
			summary.Processed, summary.Pending, summary.Skipped, summary.Errors)

	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "single inquiry file (.txt or .eml)")
		rules := fs.String("rules", cfg.RulesDir, "rules directory")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		book, err := pricebook.Load(*rules)
		must(err)
		inquiry, err := ingest.Load(*input)
		must(err)

		prices := pricebook.BuildIndex(book.Prices)
		event := extract.NewEngine(prices, book.Settings).Extract(inquiry.Text)
		event.EmailID = inquiry.EmailID
		q := quote.Compute(event, prices, book.Tiers, book.Settings.TaxRate)

		out, err := json.MarshalIndent(map[string]any{"event": event, "quote": q}, "", "  ")
		must(err)
		fmt.Println(string(out))

	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.ListenerProvider, "imap|gmail")
		label := fs.String("label", cfg.ListenerLabel, "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.InboxDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)

	case "mail:listen":
		book, err := pricebook.Load(cfg.RulesDir)
		must(err)
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		processor := pipeline.NewProcessingService(db, cfg.DataDir, book)
		svc := listener.NewService(db, cfg, processor)
		must(svc.Run(context.Background()))

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		emailID := fs.String("emailId", "", "email id (content hash)")
		out := fs.String("out", "", "output xlsx path")
		data := fs.String("data", cfg.DataDir, "data directory")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*emailID) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--emailId and --out are required"))
		}

		store := storage.NewArtifactStore(*data)
		q, err := store.LoadQuote(*emailID)
		must(err)
		must(pipeline.ExportQuoteToXLSX(q, *out))
		fmt.Printf("exported quote %s to %s\n", *emailID, *out)

	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: quotedesk <command>")
	fmt.Println("commands:")
	fmt.Println("  process [--inbox=./inbox] [--data=./data] [--rules=./rules]")
	fmt.Println("  run --input=inquiry.txt [--rules=./rules]")
	fmt.Println("  mail:fetch --provider=imap|gmail --label=INBOX --max=50")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --emailId=<hash> --out=./out/quote.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
