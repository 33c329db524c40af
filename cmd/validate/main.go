package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalog.json|catalog.yaml> [more files...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return fmt.Errorf("catalog file must have a .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidCatalogFilename(nameWithoutExt) {
		return fmt.Errorf("catalog filename '%s' must be lowercase snake_case (e.g., my_catalog.json, not my-catalog.json or MyCatalog.json)", baseName)
	}

	cat, err := catalog.Load(filename)
	if err != nil {
		return err
	}

	var problems []string
	for _, d := range cat.Decisions {
		problems = append(problems, checkIDs(&d)...)
	}
	for _, c := range cat.Crises {
		if !isValidID(c.ID) {
			problems = append(problems, fmt.Sprintf("crisis ID '%s' should be lowercase snake_case", c.ID))
		}
		for _, d := range c.Decisions {
			problems = append(problems, checkIDs(&d)...)
		}
	}
	for _, l := range cat.Lessons {
		if !isValidID(l.ID) {
			problems = append(problems, fmt.Sprintf("lesson ID '%s' should be lowercase snake_case", l.ID))
		}
	}

	if len(problems) > 0 {
		for i := range problems {
			problems[i] = "  - " + problems[i]
		}
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(problems, "\n"))
	}
	return nil
}

// checkIDs flags decision and option ids that are not snake_case.
// catalog.Load already enforces structural validity; this layer is
// purely a naming lint for content authors.
func checkIDs(d *catalog.Decision) []string {
	var problems []string
	if !isValidID(d.ID) {
		problems = append(problems, fmt.Sprintf("decision ID '%s' should be lowercase snake_case", d.ID))
	}
	for _, o := range d.Options {
		if !isValidID(o.ID) {
			problems = append(problems, fmt.Sprintf("option ID '%s' in decision '%s' should be lowercase snake_case", o.ID, d.ID))
		}
	}
	return problems
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidCatalogFilename(name string) bool {
	// Allow 'x.' prefix for experimental catalogs
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
