package exporters

import (
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05"

// ExportFilename builds the attachment name for a catalog export, stamped so
// successive downloads never collide.
func ExportFilename(extension string, now time.Time) string {
	return fmt.Sprintf("booknest_export_%s.%s", now.Format("20060102_150405"), extension)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}
