package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jszwec/csvutil"

	"github.com/matzehuels/accessmap/pkg/stats"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeRecords parses statistics CSV data. The first line is the header;
// a leading UTF-8 byte order mark is ignored. Recognized columns are
// renamed to their Record tags so csvutil can bind them; any other column
// is kept under a positional name and ignored.
func DecodeRecords(data []byte) ([]stats.Record, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	aliased := make([]string, len(header))
	hasState := false
	for i, col := range header {
		if alias, ok := stats.HeaderAliases[col]; ok {
			aliased[i] = alias
			hasState = hasState || col == stats.ColumnState
			continue
		}
		aliased[i] = "_col" + strconv.Itoa(i)
	}
	if !hasState {
		return nil, fmt.Errorf("missing column %q", stats.ColumnState)
	}

	dec, err := csvutil.NewDecoder(r, aliased...)
	if err != nil {
		return nil, err
	}

	var records []stats.Record
	for {
		var rec stats.Record
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(records)+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
