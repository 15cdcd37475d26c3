package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

	// Migrations run on postgres in production and sqlite in development, so
	// dialect-specific syntax is rejected. Only SQL outside string literals
	// and comments is checked.
	nonPortable = []*regexp.Regexp{
		regexp.MustCompile(`::`),
		regexp.MustCompile(`\bCREATE\s+TYPE\b`),
		regexp.MustCompile(`\bJSONB\b`),
		regexp.MustCompile(`\bGEN_RANDOM_UUID\b`),
		regexp.MustCompile(`\b(?:BIG|SMALL)?SERIAL\b`),
		regexp.MustCompile(`\w+\s*\[\s*\d*\s*\]`),
	}
)

// ValidateDir validates migration filenames, goose headers and portability.
// An empty dir validates the embedded set.
func ValidateDir(dir string) error {
	fsys, root := source(dir)

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	count := 0

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name
		count++

		b, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
		code := strings.ToUpper(stripLiteralsAndComments(txt))
		for _, re := range nonPortable {
			if found := re.FindString(code); found != "" {
				return fmt.Errorf("migration %q uses non-portable syntax %q", name, found)
			}
		}
	}

	if count == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

// stripLiteralsAndComments blanks quoted strings, quoted identifiers and
// "--" comments so that their contents are not mistaken for SQL.
func stripLiteralsAndComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case ch == '\'' || ch == '"':
			b.WriteByte(ch)
			for i++; i < len(sql); i++ {
				if sql[i] != ch {
					continue
				}
				if i+1 < len(sql) && sql[i+1] == ch {
					i++
					continue
				}
				break
			}
			b.WriteByte(ch)
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			b.WriteByte('\n')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
