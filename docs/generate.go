package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nuts-foundation/nuts-esign/engine"
)

func main() {
	if err := generateConfigOptionsDocs("README_options.rst", engine.NewSignEngine().FlagSet); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// generateConfigOptionsDocs writes an rst table with the key, default and description of every flag
func generateConfigOptionsDocs(fileName string, flags *pflag.FlagSet) error {
	rows := [][]string{{"Key", "Default", "Description"}}
	flags.VisitAll(func(f *pflag.Flag) {
		rows = append(rows, []string{f.Name, f.DefValue, f.Usage})
	})

	widths := make([]int, 3)
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	separator := func(c string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat(c, w)
		}
		return strings.Join(parts, " ") + "\n"
	}

	var b strings.Builder
	b.WriteString(separator("="))
	for i, row := range rows {
		for j, cell := range row {
			if j < len(row)-1 {
				b.WriteString(fmt.Sprintf("%-*s ", widths[j], cell))
			} else {
				b.WriteString(cell)
			}
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString(separator("="))
		}
	}
	b.WriteString(separator("="))
	return os.WriteFile(fileName, []byte(b.String()), 0644)
}
