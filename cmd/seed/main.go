package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

func main() {
	yes := flag.Bool("y", false, "import without asking for confirmation")
	sheet := flag.String("sheet", "", "sheet to read (default: first sheet)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] [-sheet name] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX file:", err)
	}
	defer f.Close()

	paths, skipped, err := readCategoryPaths(f, *sheet)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Category paths to import: %d (skipped rows: %d)\n", len(paths), skipped)

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	created, err := repository.NewCategoryRepository(db.GetDB()).UpsertTree(paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Import failed:", err)
		os.Exit(1)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("New leaf categories: %d\n", created)
}

// readCategoryPaths reads "Main | Sub | SubSub" rows. A first row whose
// cells read like headers is skipped, as are rows missing any level.
// Duplicate paths collapse to one.
func readCategoryPaths(f *excelize.File, sheetName string) ([]model.CategoryPath, int, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in sheet %s", sheetName)
	}

	var paths []model.CategoryPath
	seen := make(map[model.CategoryPath]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) < 3 {
			skipped++
			continue
		}

		path := model.CategoryPath{
			MainCategory:   strings.TrimSpace(row[0]),
			SubCategory:    strings.TrimSpace(row[1]),
			SubSubCategory: strings.TrimSpace(row[2]),
		}
		if path.MainCategory == "" || path.SubCategory == "" || path.SubSubCategory == "" {
			skipped++
			continue
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}

	return paths, skipped, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(row[0]), " ", ""))
	return first == "main" || first == "maincategory"
}
