// internal/output/naming.go
package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Naming selects how export files are named.
type Naming string

const (
	// NamingLabel produces "<Label> on <Monday, Jan 2, 2006>.<ext>".
	NamingLabel Naming = "label"
	// NamingTimestamp produces "<rows>_<20060102T150405>.<ext>".
	NamingTimestamp Naming = "timestamp"
)

// DefaultLabel is used by NamingLabel when no label is configured.
const DefaultLabel = "Contacts Exported"

const (
	labelDateLayout = "Monday, Jan 2, 2006"
	stampLayout     = "20060102T150405"
)

// Namer builds export file names.
type Namer struct {
	Naming Naming
	Label  string
	Now    func() time.Time
}

// ParseNaming validates a configured naming scheme. Empty means label.
func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingLabel:
		return NamingLabel, nil
	case NamingTimestamp:
		return NamingTimestamp, nil
	default:
		return "", fmt.Errorf("unsupported naming scheme: %s", s)
	}
}

// Filename returns the name for an export of rows rows with extension ext.
func (n Namer) Filename(rows int, ext string) string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	t := now()

	var base string
	switch n.Naming {
	case NamingTimestamp:
		base = strconv.Itoa(rows) + "_" + t.Format(stampLayout)
	default:
		label := strings.TrimSpace(n.Label)
		if label == "" {
			label = DefaultLabel
		}
		base = label + " on " + t.Format(labelDateLayout)
	}
	return sanitizeFilename(base) + "." + ext
}

// sanitizeFilename drops path separators and characters rejected by common
// filesystems.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
}
