package device

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// document is the response root. Only direct children are considered;
// their order is preserved.
type document struct {
	XMLName xml.Name
	Fields  []field `xml:",any"`
}

// field is one root-level child element.
type field struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// Parse extracts daily values from a raw appliance response.
//
// Root-level elements are processed in document order:
//   - code: any value other than "ok" stops processing. If no daily value
//     has been read yet the result is ErrDevice; otherwise the values read
//     so far are returned.
//   - D_Y_2_<1..14>: the integer content is stored at DayIndex n-1.
//     Without history, processing stops once D_Y_2_1 has been read.
//   - anything else is ignored.
//
// A daily field whose content is not an integer is skipped. Parsing
// succeeds as long as at least one daily value was read.
//
// Parameters:
//   - raw: Response body returned by Client.Fetch
//   - history: Whether the full 14-day batch is expected
//
// Returns:
//   - Batch: MaxDays readings with history, one reading without
//   - error: Wraps ErrParse or ErrDevice
func Parse(raw []byte, history bool) (Batch, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	// Embedded web servers commonly declare ISO-8859-1.
	dec.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Batch{}, fmt.Errorf("%w: no root element", ErrParse)
		}
		return Batch{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	values := make([]int, MaxDays)
	extracted := 0
	var skipped []string

scan:
	for _, f := range doc.Fields {
		name := f.XMLName.Local

		if name == StatusField {
			status := strings.TrimSpace(f.Text)
			if status == StatusOK {
				continue
			}
			if extracted == 0 {
				return Batch{}, fmt.Errorf("%w: status %q", ErrDevice, status)
			}
			break scan
		}

		day, ok := ParseDailyFieldName(name)
		if !ok || (!history && day != 1) {
			continue
		}

		value, err := strconv.Atoi(strings.TrimSpace(f.Text))
		if err != nil {
			skipped = append(skipped, name)
			continue
		}

		values[day-1] = value
		extracted++

		if day == 1 && !history {
			break scan
		}
	}

	if extracted == 0 {
		if len(skipped) > 0 {
			return Batch{}, fmt.Errorf("%w: malformed daily fields %s", ErrParse, strings.Join(skipped, ", "))
		}
		return Batch{}, fmt.Errorf("%w: no daily fields in response", ErrParse)
	}

	days := 1
	if history {
		days = MaxDays
	}

	readings := make([]Reading, days)
	for i := range readings {
		readings[i] = Reading{DayIndex: i, Value: values[i]}
	}

	return Batch{Readings: readings, Extracted: extracted}, nil
}
