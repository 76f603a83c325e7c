// Command leadcheck prints the leads of the configured sheet, or a single lead with -id.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/xavierca1/leaddialer/internal/config"
	"github.com/xavierca1/leaddialer/internal/infra/sheets"
	"github.com/xavierca1/leaddialer/internal/logger"
)

func main() {
	id := flag.String("id", "", "print only the lead with this id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Google.SheetID == "" || cfg.Google.ServiceAccountEmail == "" || cfg.Google.PrivateKey == "" {
		log.Fatal("GOOGLE_SHEET_ID, GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_PRIVATE_KEY must be set")
	}

	zl, err := logger.New("warn")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := sheets.NewClient(ctx, cfg.Google.SheetID, cfg.Google.ServiceAccountEmail, cfg.Google.PrivateKey, zl)
	if err != nil {
		log.Fatalf("sheets: %v", err)
	}
	repo := sheets.NewLeadRepository(client, zl)

	if *id != "" {
		lead, err := repo.FindByID(ctx, *id)
		if err != nil {
			log.Fatalf("lead %s: %v", *id, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(lead)
		return
	}

	leads, err := repo.FindAll(ctx)
	if err != nil {
		log.Fatalf("leads: %v", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tSTATUS\tLAST CONTACT")
	for _, l := range leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Phone, l.Email, l.Status, l.LastContact)
	}
	tw.Flush()
	fmt.Printf("\n%d leads\n", len(leads))
}
