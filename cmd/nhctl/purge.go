package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
)

func runPurge() {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	db := fs.String("db", "", "newsd SQLite database (default: server.database_path)")
	fs.Parse(os.Args[1:])

	path := *db
	if path == "" {
		path = serverDBPath()
	}

	st := openDB(path)
	defer st.Close()

	n, err := st.PurgeSessions(context.Background())
	if err != nil {
		log.Fatalf("purge sessions: %v", err)
	}
	fmt.Printf("Purged %d expired sessions from %s\n", n, path)
}
