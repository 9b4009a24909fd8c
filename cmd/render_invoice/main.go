package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"shopdesk/backend/internal/client"
	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/money"
	"shopdesk/backend/internal/render"
	"shopdesk/backend/pkg/logging"
)

type options struct {
	inputPath  string
	outputPath string
	format     string
	serverURL  string
	currency   string
	symbol     string
	locale     string
	timeout    time.Duration
	logLevel   string
}

func main() {
	opts := parseFlags()
	logger := logging.Setup(opts.logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	written, err := run(ctx, opts, logger)
	if err != nil {
		logger.Error("render invoice failed", "error", err)
		os.Exit(1)
	}
	logger.Info("invoice written", "path", written, "format", opts.format)
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.inputPath, "in", "-", "invoice JSON file, - for stdin")
	flag.StringVar(&opts.outputPath, "out", "", "output file (defaults to Invoice-{number}.pdf or .html)")
	flag.StringVar(&opts.format, "format", "pdf", "pdf or html")
	flag.StringVar(&opts.serverURL, "server", "", "backend base URL to read the shop profile and currency from")
	flag.StringVar(&opts.currency, "currency", "", "ISO currency code, overrides the shop setting")
	flag.StringVar(&opts.symbol, "symbol", "", "currency symbol, overrides the shop setting")
	flag.StringVar(&opts.locale, "locale", "", "number formatting locale, e.g. en-US")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	return opts
}

func run(ctx context.Context, opts options, logger *slog.Logger) (string, error) {
	if opts.format != "pdf" && opts.format != "html" {
		return "", fmt.Errorf("unsupported format %q", opts.format)
	}
	inv, err := readInvoice(opts.inputPath)
	if err != nil {
		return "", err
	}

	settings := money.DefaultSettings()
	if opts.serverURL != "" {
		data, err := client.New(opts.serverURL, opts.timeout, logger).PrintData(ctx)
		if err != nil {
			return "", fmt.Errorf("load print data: %w", err)
		}
		inv = inv.WithCompany(data.Company)
		settings = data.Currency
	}
	if opts.currency != "" {
		settings.Code = strings.ToUpper(opts.currency)
		settings.Symbol = ""
	}
	if opts.symbol != "" {
		settings.Symbol = opts.symbol
	}
	if opts.locale != "" {
		settings.Locale = opts.locale
	}
	f := money.NewFormatter(settings)

	timeout := opts.timeout / 3
	renderer := render.New(render.NewHTTPImageFetcher(timeout))
	var out []byte
	if opts.format == "pdf" {
		out, err = renderer.InvoicePDF(ctx, inv, f)
	} else {
		out, err = renderer.InvoiceHTML(ctx, inv, f)
	}
	if err != nil {
		return "", err
	}

	path := opts.outputPath
	if path == "" {
		path = render.InvoiceFilename(inv.InvoiceNumber)
		if opts.format == "html" {
			path = strings.TrimSuffix(path, ".pdf") + ".html"
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func readInvoice(path string) (domain.InvoiceData, error) {
	var reader io.Reader = os.Stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return domain.InvoiceData{}, fmt.Errorf("open invoice: %w", err)
		}
		defer file.Close()
		reader = file
	}
	var inv domain.InvoiceData
	if err := json.NewDecoder(reader).Decode(&inv); err != nil {
		return domain.InvoiceData{}, fmt.Errorf("decode invoice: %w", err)
	}
	return inv, nil
}
