package models

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

Lists database columns that no field of the corresponding Go model maps to.
Useful after hand-editing the SQLite file or pointing the service at an older
postgres schema.

	planner column-report

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: posts ---
Found 1 columns not accounted for in model:
  - legacy_slug

--- Table: todos ---
All columns are accounted for in the model.

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Series{},
		&Post{},
		&Idea{},
		&Todo{},
		&Template{},
	}
}

// GenerateModels writes typed query helpers for every model into outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel: logger.Info,
			Colorful: true,
		},
	)
	db = db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("error during models migration: %w", err)
	}

	GenerateColumnMismatchReport(db, os.Stdout)

	g.Execute()
	return nil
}

// GenerateColumnMismatchReport prints, per table, the columns that no model field maps to.
// It returns the mismatches keyed by table name.
func GenerateColumnMismatchReport(db *gorm.DB, w io.Writer) map[string][]string {
	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")

	report := make(map[string][]string)
	totalMismatches := 0

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			fmt.Fprintf(w, "Error parsing model %T: %v\n", model, err)
			continue
		}
		tableName := stmt.Schema.Table
		fmt.Fprintf(w, "\n--- Table: %s ---\n", tableName)

		if !db.Migrator().HasTable(tableName) {
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			fmt.Fprintf(w, "Error getting columns for table %s: %v\n", tableName, err)
			continue
		}
		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		mismatches := findColumnMismatches(dbColumns, stmt.Schema.DBNames)
		if len(mismatches) > 0 {
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			report[tableName] = mismatches
			totalMismatches += len(mismatches)
		} else {
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", totalMismatches)
	return report
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)
	return mismatches
}
