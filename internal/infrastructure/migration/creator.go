package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationTemplate = `-- {{.Name}} ({{.Direction}})
-- Created: {{.Timestamp}}

`

// File describes a generated up/down migration pair
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair numbered after the highest
// existing migration in dir
func CreateMigration(dir, name string) (*File, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var last uint
	for _, m := range existing {
		if v, ok := parseVersion(m); ok && v > last {
			last = v
		}
	}

	f := &File{Version: last + 1, Name: base}
	stem := fmt.Sprintf("%06d_%s", f.Version, base)
	f.UpPath = filepath.Join(dir, stem+".up.sql")
	f.DownPath = filepath.Join(dir, stem+".down.sql")

	if err := writeMigrationFile(f.UpPath, f.Name, "up"); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(f.DownPath, f.Name, "down"); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeMigrationFile(path, name, direction string) error {
	tmpl := template.Must(template.New("migration").Parse(migrationTemplate))
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	return tmpl.Execute(out, map[string]string{
		"Name":      name,
		"Direction": direction,
		"Timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// sanitizeName lowercases name and collapses separators into underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

func parseVersion(stem string) (uint, bool) {
	prefix, _, _ := strings.Cut(stem, "_")
	v, err := strconv.ParseUint(prefix, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// ListMigrations returns the sorted stems of every *.up.sql file in dir
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	stems := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if stem, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok && stem != "" {
			stems = append(stems, stem)
		}
	}
	sort.Strings(stems)
	return stems, nil
}
