package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Offline inspector for the relay's BadgerDB store. Opens the database
// read-only so it can run next to a live server.
func main() {
	dbPath := flag.String("db", "/tmp/skillswap/badger", "Path to badger DB")
	prefix := flag.String("prefix", "session:", "Prefix to scan (user:id:, session:, skill:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Created", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				table.Append(toRow(string(item.Key()), val))
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
	fmt.Printf("\n%d record(s) under prefix %q\n", count, *prefix)
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

// toRow extracts a human-readable summary from the stored JSON record.
func toRow(key string, val []byte) []string {
	var record map[string]any
	if err := json.Unmarshal(val, &record); err != nil {
		return []string{key, "RAW", "-", fmt.Sprintf("%d bytes", len(val))}
	}

	kind := strings.SplitN(key, ":", 2)[0]
	created := "-"
	if raw, ok := record["createdAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			created = ts.Format("2006-01-02 15:04")
		}
	}

	detail := ""
	switch kind {
	case "user":
		detail = fmt.Sprintf("%v", record["email"])
	case "session":
		detail = fmt.Sprintf("%v [%v] %v -> %v",
			record["title"], record["status"], record["userId"], record["hostId"])
	case "skill":
		detail = fmt.Sprintf("%v (%v) by %v",
			record["name"], record["category"], record["userId"])
	default:
		detail = string(val)
	}

	return []string{key, strings.ToUpper(kind), created, detail}
}
