// Package vault rewrites the financial summary lines of a markdown note.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"fincharts/internal/core"
)

// ErrOutsideVault is returned for note paths that leave the vault root.
var ErrOutsideVault = errors.New("note path outside vault")

var (
	currencyLine = regexp.MustCompile(`Currency: [^\r\n]*`)
	expensesLine = regexp.MustCompile(`Expenses: [^\r\n]*`)
)

// Writer updates notes under a single vault directory.
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// UpdateFinancialData replaces the first "Currency: ..." and "Expenses: ..."
// lines of the note at path. Lines that are absent are left absent. A missing
// note yields core.ErrMissingTarget and nothing is created.
func (w *Writer) UpdateFinancialData(ctx context.Context, path, currency string, expenses []float64) error {
	rel := filepath.Clean(strings.TrimPrefix(filepath.ToSlash(path), "/"))
	if path == "" || !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %q", ErrOutsideVault, path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	root, err := os.OpenRoot(w.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: vault %s", core.ErrMissingTarget, w.root)
		}
		return fmt.Errorf("open vault: %w", err)
	}
	defer root.Close()

	info, err := root.Stat(rel)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", core.ErrMissingTarget, rel)
	}
	if err != nil {
		return fmt.Errorf("stat note: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", core.ErrMissingTarget, rel)
	}

	content, err := root.ReadFile(rel)
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}

	updated := replaceFirst(string(content), currencyLine, "Currency: "+currency)
	updated = replaceFirst(updated, expensesLine, "Expenses: "+JoinAmounts(expenses))

	if err := root.WriteFile(rel, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write note: %w", err)
	}

	slog.InfoContext(ctx, "Financial data written to note",
		"note", rel,
		"currency", currency,
		"values", len(expenses))
	return nil
}

// JoinAmounts renders values the way the note stores them: "800, 640, 480".
func JoinAmounts(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = core.FormatAmount(v)
	}
	return strings.Join(parts, ", ")
}

// replaceFirst substitutes only the first match, literally.
func replaceFirst(s string, re *regexp.Regexp, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
