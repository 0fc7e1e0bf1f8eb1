package main

import (
	"fmt"
	"os"

	"github.com/agrigoriev/vss2git/pkg/vss"
)

func main() {
	ko, dbPath, err := initConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	lo := initLogger(ko)

	db, err := vss.OpenDatabase(dbPath, ko.Int("app.codepage"))
	if err != nil {
		lo.Error("opening database", "error", err)
		os.Exit(1)
	}

	if err := db.Lock(); err != nil {
		lo.Error("locking database", "error", err)
		os.Exit(1)
	}
	defer db.Unlock()

	walker := vss.NewWalker(db)
	dumper := vss.NewDumper(os.Stdout, ko.Bool("app.verbose"))

	root := ko.String("app.root")
	switch ko.String("app.mode") {
	case "tree":
		err = dumper.DumpTree(walker, root)
	case "history":
		var changes []vss.Change
		changes, err = walker.CollectChangesets(root, vss.RootPhysicalName)
		if err == nil {
			err = dumper.DumpChangesets(changes)
		}
	case "both":
		if err = dumper.DumpTree(walker, root); err == nil {
			var changes []vss.Change
			changes, err = walker.CollectChangesets(root, vss.RootPhysicalName)
			if err == nil {
				err = dumper.DumpChangesets(changes)
			}
		}
	default:
		lo.Error("unknown mode", "mode", ko.String("app.mode"))
		os.Exit(2)
	}

	if err != nil {
		lo.Error("dumping database", "error", err)
		os.Exit(1)
	}
}
