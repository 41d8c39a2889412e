// Package render turns export snapshots into downloadable bytes. Each
// renderer is stateless; callers pick one by format.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/export"
)

// Format identifies a renderer.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type for a format; false for unknown formats.
func ContentType(f Format) (string, bool) {
	switch f {
	case FormatCSV:
		return "text/csv", true
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	default:
		return "", false
	}
}

// CSV writes the snapshot as one flat CSV document: a field/value block for
// the entity itself, then one block per relation section.
func CSV(w io.Writer, snap *export.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{snap.Label, ""}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, name := range fieldOrder(snap.Fields) {
		if err := cw.Write([]string{name, cell(snap.Fields[name])}); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, section := range snap.Sections {
		if err := cw.Write([]string{""}); err != nil {
			return err
		}
		if err := cw.Write([]string{section.Name}); err != nil {
			return err
		}

		switch {
		case section.One != nil:
			for _, col := range section.Columns {
				if err := cw.Write([]string{col, cell(section.One[col])}); err != nil {
					return fmt.Errorf("write section %s: %w", section.Name, err)
				}
			}
		case len(section.Many) > 0:
			if err := cw.Write(section.Columns); err != nil {
				return fmt.Errorf("write section %s: %w", section.Name, err)
			}
			for _, row := range section.Many {
				out := make([]string, 0, len(section.Columns))
				for _, col := range section.Columns {
					out = append(out, cell(row[col]))
				}
				if err := cw.Write(out); err != nil {
					return fmt.Errorf("write section %s: %w", section.Name, err)
				}
			}
		default:
			if err := cw.Write([]string{"none"}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// fieldOrder sorts the entity's own fields with id first and the envelope
// timestamps last, keeping attribute output stable.
func fieldOrder(fields map[string]any) []string {
	var attrs []string
	for name := range fields {
		switch name {
		case "id", "created_at", "last_modified_at", "archived_at", "archive_reason":
			continue
		}
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)

	out := make([]string, 0, len(fields))
	out = append(out, "id")
	out = append(out, attrs...)
	for _, name := range []string{"created_at", "last_modified_at", "archived_at", "archive_reason"} {
		if _, ok := fields[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func cell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case uuid.UUID:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
