package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"bambu.printjobs/internal/adapters/homeassistant"
	"bambu.printjobs/internal/adapters/printer/bambu"
	"bambu.printjobs/internal/config"
	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
	"bambu.printjobs/internal/core/ports"
	"bambu.printjobs/internal/core/services"
)

const usage = `usage: printjobs [-json] <command>

commands:
  list                 list print jobs known to Home Assistant
  press <entity_id>    start the print job backed by entity_id, through
                       Home Assistant or the printer (INVOKER_BACKEND)
`

func main() {
	asJSON := flag.Bool("json", false, "print machine-readable output")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger.InitWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ha := homeassistant.NewClient(cfg.HAURL, cfg.HAToken)
	jobs := services.NewJobService(ha)

	switch flag.Arg(0) {
	case "list":
		list, err := jobs.ListPrintJobs(ctx)
		if err != nil {
			log.Fatalf("failed to list print jobs: %v", err)
		}
		printJobs(list, *asJSON)
	case "press":
		if flag.NArg() != 2 {
			flag.Usage()
			os.Exit(2)
		}
		job, err := jobs.GetPrintJob(ctx, flag.Arg(1))
		if err != nil {
			log.Fatalf("failed to find print job: %v", err)
		}
		caller, closeCaller := pressCaller(cfg, ha)
		defer closeCaller()
		// The process must outlive the dispatch; failures are only logged.
		services.NewInvoker(caller, nil).InvokePrint(ctx, *job).Wait()
		fmt.Printf("dispatched %s\n", job.EntityID)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// pressCaller returns the backend configured by INVOKER_BACKEND, matching
// the server.
func pressCaller(cfg *config.Config, ha *homeassistant.Client) (ports.ServiceCaller, func()) {
	if cfg.InvokerBackend != config.BackendMQTT {
		return ha, func() {}
	}
	printer, err := bambu.DialPrinter(cfg.PrinterMQTTURL, cfg.PrinterSerial, cfg.PrinterAccessCode)
	if err != nil {
		log.Fatalf("failed to connect to printer: %v", err)
	}
	return bambu.NewDispatcher(bambu.NewCache(cfg.CacheDir), printer, cfg.PrinterSerial), printer.Close
}

func printJobs(jobs []domain.PrintJob, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(jobs)
		return
	}
	if len(jobs) == 0 {
		fmt.Println("No print jobs available")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENTITY\tIMAGE")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", j.Name, j.EntityID, j.Image)
	}
	w.Flush()
}
