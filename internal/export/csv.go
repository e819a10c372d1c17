package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

// appendCSVRow appends one record to the CSV file at path, writing the
// header first when the file is new or empty.
func appendCSVRow(path string, rec core.DonationRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat csv: %w", err)
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		if err := w.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := w.Write(row(rec)); err != nil {
		f.Close()
		return fmt.Errorf("write csv row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
