package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// NoteTimestampLayout is the prefix format of each note, day/month hour:minute.
const NoteTimestampLayout = "02/01 15:04"

var noteHeader = regexp.MustCompile(`^\[(\d{2}/\d{2} \d{2}:\d{2})\] ?`)

// NoteLog is the rendered note history of a ticket, newest entry first.
// Entries are only ever prepended.
type NoteLog string

// NoteEntry is one timestamped note recovered from a NoteLog.
type NoteEntry struct {
	Stamp string `json:"stamp"`
	Text  string `json:"text"`
}

// Prepend returns the log with text added as the newest entry stamped at at.
// Blank text leaves the log unchanged.
func (n NoteLog) Prepend(at time.Time, text string) NoteLog {
	if strings.TrimSpace(text) == "" {
		return n
	}
	entry := fmt.Sprintf("[%s] %s\n%s", at.Format(NoteTimestampLayout), text, string(n))
	return NoteLog(strings.TrimSpace(entry))
}

// Entries splits the log into its entries, newest first. Lines that do not
// start with a timestamp prefix continue the previous entry; leading
// unstamped text becomes an entry with an empty Stamp.
func (n NoteLog) Entries() []NoteEntry {
	if strings.TrimSpace(string(n)) == "" {
		return nil
	}
	var entries []NoteEntry
	for _, line := range strings.Split(string(n), "\n") {
		if m := noteHeader.FindStringSubmatch(line); m != nil {
			entries = append(entries, NoteEntry{Stamp: m[1], Text: line[len(m[0]):]})
			continue
		}
		if len(entries) == 0 {
			entries = append(entries, NoteEntry{Text: line})
			continue
		}
		last := &entries[len(entries)-1]
		last.Text += "\n" + line
	}
	return entries
}

func (n NoteLog) String() string {
	return string(n)
}
