package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gocompare/adapters/excel"
	"gocompare/adapters/postgres"
	"gocompare/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Usage: migrate <database_url> [<data_dir> [experiment]]
//
// Creates the observation schema, then imports every .csv and .xlsx file in data_dir.
// The file name without extension is the group, so control.csv loads group "control".
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [<data_dir> [experiment]]")
	}

	databaseURL := os.Args[1]
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema version %s applied", runner.Version())

	if len(os.Args) < 3 {
		return
	}
	dataDir := os.Args[2]
	experiment := "default"
	if len(os.Args) > 3 {
		experiment = os.Args[3]
	}

	files, err := findDataFiles(dataDir)
	if err != nil {
		log.Fatalf("Failed to find data files: %v", err)
	}
	log.Printf("Found %d data files to import into experiment %q", len(files), experiment)

	writer := postgres.NewObservationWriter(db)
	imported, skipped := 0, 0
	for _, file := range files {
		n, err := importFile(ctx, writer, file, experiment)
		if err != nil {
			log.Printf("Failed to import %s: %v", file, err)
			skipped++
			continue
		}
		imported += n
	}

	log.Printf("Import complete: %d rows imported, %d files skipped", imported, skipped)
}

func importFile(ctx context.Context, writer *postgres.ObservationWriter, path, experiment string) (int, error) {
	reader := excel.NewDataReader(path, excel.DefaultReaderConfig())
	headers, err := reader.Columns(ctx)
	if err != nil {
		return 0, err
	}

	var columns []string
	for _, h := range headers {
		for _, c := range postgres.ObservationColumns {
			if postgres.SnakeCase(h) == c {
				columns = append(columns, h)
			}
		}
	}

	frame, err := reader.LoadFrame(ctx, columns...)
	if err != nil {
		return 0, err
	}
	group := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return writer.Insert(ctx, experiment, group, frame)
}

func findDataFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !info.IsDir() && (ext == ".csv" || ext == ".xlsx") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}
