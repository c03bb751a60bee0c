package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout of the timestamp prefix of every archived line
const TimestampLayout = "2006-01-02 15:04:05"

const entrySeparator = " - "

// Identity names one archive: the kind of the tracked entity and a caller supplied label
type Identity struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// NewIdentity creates a new identity
func NewIdentity(kind, label string) Identity {
	return Identity{Kind: kind, Label: label}
}

// StorageName returns the stable storage key for the identity, e.g. Product_Bread
func (i Identity) StorageName() string {
	return fmt.Sprintf("%s_%s", i.Kind, i.Label)
}

// CreationMessage is the first message ever written for the identity
func (i Identity) CreationMessage() string {
	return fmt.Sprintf("%s %s created", i.Kind, i.Label)
}

func (i Identity) String() string {
	return i.StorageName()
}

// Entry represents one archived change of a tracked entity
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// NewEntry creates an entry truncated to second precision
func NewEntry(at time.Time, message string) Entry {
	return Entry{
		Timestamp: at.Truncate(time.Second),
		Message:   message,
	}
}

// Line formats the entry as stored: "{timestamp} - {message}"
func (e Entry) Line() string {
	return e.Timestamp.Format(TimestampLayout) + entrySeparator + e.Message
}

// ParseEntry parses a stored line back into an entry using the local clock zone
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < len(TimestampLayout)+len(entrySeparator) {
		return Entry{}, fmt.Errorf("malformed entry %q", line)
	}
	if line[len(TimestampLayout):len(TimestampLayout)+len(entrySeparator)] != entrySeparator {
		return Entry{}, fmt.Errorf("malformed entry %q: missing separator", line)
	}

	ts, err := time.ParseInLocation(TimestampLayout, line[:len(TimestampLayout)], time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed entry timestamp: %w", err)
	}

	return Entry{
		Timestamp: ts,
		Message:   line[len(TimestampLayout)+len(entrySeparator):],
	}, nil
}

// ParseEntries parses stored lines in order
func ParseEntries(lines []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
