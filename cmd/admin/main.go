package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"growarena.gg/internal/game/state"
	"growarena.gg/internal/persistence/ledgerdb"
)

// Offline inspection of a server data directory. Run it against a stopped
// server or accept slightly stale index reads.

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "settlements":
			settlementsCmd(os.Args[2:])
			return
		case "taxes":
			taxesCmd(os.Args[2:])
			return
		case "disbursements":
			disbursementsCmd(os.Args[2:])
			return
		case "groups":
			groupsCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <settlements|taxes|disbursements|groups> [flags]")
	os.Exit(2)
}

func openLedger(dataDir string) *ledgerdb.SQLiteLedger {
	l, err := ledgerdb.Open(filepath.Join(dataDir, "ledger.db"))
	if err != nil {
		log.Fatalf("open ledger: %v", err)
	}
	return l
}

func settlementsCmd(args []string) {
	fs := flag.NewFlagSet("settlements", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	groupID := fs.String("group", "", "group id")
	limit := fs.Int("limit", 20, "max rows")
	_ = fs.Parse(args)
	if *groupID == "" {
		log.Fatal("settlements: -group is required")
	}

	l := openLedger(*dataDir)
	defer l.Close()
	rows, err := l.RecentSettlements(*groupID, *limit)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tEFFECT\tOWNER\tKIND\tOUTCOME\tPAYOUT\tPENALTY")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			time.Unix(r.At, 0).Format(time.RFC3339), r.EffectID, r.OwnerID, r.Kind, r.Outcome, r.Payout, r.Penalty)
	}
	_ = w.Flush()
}

func taxesCmd(args []string) {
	fs := flag.NewFlagSet("taxes", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	l := openLedger(*dataDir)
	defer l.Close()
	rows, err := l.TaxTotalsByGroup()
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tENTRIES\tGROSS\tTAX\tNET")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", r.GroupID, r.Entries, r.Gross, r.Tax, r.Net)
	}
	_ = w.Flush()
}

func disbursementsCmd(args []string) {
	fs := flag.NewFlagSet("disbursements", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	groupID := fs.String("group", "", "group id")
	limit := fs.Int("limit", 20, "max rows")
	_ = fs.Parse(args)
	if *groupID == "" {
		log.Fatal("disbursements: -group is required")
	}

	l := openLedger(*dataDir)
	defer l.Close()
	rows, err := l.Disbursements(*groupID, *limit)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tTARGET\tKIND\tAMOUNT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			time.Unix(r.At, 0).Format(time.RFC3339), r.TargetID, r.Kind, r.Amount)
	}
	_ = w.Flush()
}

func groupsCmd(args []string) {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	s, err := state.Open(*dataDir, nil)
	if err != nil {
		log.Fatalf("open state: %v", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tENABLED\tTAX\tTREASURY\tUSERS\tEFFECTS")
	for _, gid := range s.GroupIDs() {
		s.View(gid, func(d *state.GroupData) {
			fmt.Fprintf(w, "%s\t%v\t%v\t%d\t%d\t%d\n",
				d.Group.ID, d.Group.Enabled, d.Group.TaxEnabled,
				d.Group.Treasury, len(d.Group.Users), len(d.Effects))
		})
	}
	_ = w.Flush()
}
