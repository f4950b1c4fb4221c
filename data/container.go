// Package data provides the read-only remedy store shared by all requests.
// The table is built once at startup; the container only records where it
// came from so that drift of the source file on disk can be reported.
package data

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/remedy"
)

// Compile-time check to ensure DataContainer implements RemedyStore
var _ interfaces.RemedyStore = (*DataContainer)(nil)

// FileSnapshot captures the identity of the source file at load time
type FileSnapshot struct {
	Size    int64
	ModTime time.Time
}

// DataContainer holds the remedy table and metadata about its source
type DataContainer struct {
	table    *remedy.Table
	source   string
	snapshot FileSnapshot
	loadedAt time.Time
	drifted  atomic.Bool
}

// NewDataContainer wraps an already loaded table
func NewDataContainer(table *remedy.Table, source string, snapshot FileSnapshot) *DataContainer {
	if table == nil {
		logging.Warn("Remedy table is nil, serving an empty dataset")
		table = remedy.NewTable(nil)
	}
	return &DataContainer{
		table:    table,
		source:   source,
		snapshot: snapshot,
		loadedAt: time.Now(),
	}
}

// SnapshotFile stats path and returns its size and modification time
func SnapshotFile(path string) (FileSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileSnapshot{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return FileSnapshot{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Lookup finds all remedies for the disease and age
func (dc *DataContainer) Lookup(disease string, age int) remedy.Result {
	return dc.table.Lookup(disease, age)
}

// Diseases returns the distinct disease names of the dataset
func (dc *DataContainer) Diseases() []string {
	return dc.table.Diseases()
}

// Records returns a copy of every record
func (dc *DataContainer) Records() []remedy.Record {
	return dc.table.Records()
}

// Len returns the number of records
func (dc *DataContainer) Len() int {
	return dc.table.Len()
}

// LoadedAt returns when the table was loaded
func (dc *DataContainer) LoadedAt() time.Time {
	return dc.loadedAt
}

// Source returns the path the table was loaded from
func (dc *DataContainer) Source() string {
	return dc.source
}

// HasDrifted reports whether the last check found the source file changed
func (dc *DataContainer) HasDrifted() bool {
	return dc.drifted.Load()
}

// CheckDrift compares the source file on disk with the load-time snapshot.
// The table is never reloaded; a changed file only takes effect on restart.
func (dc *DataContainer) CheckDrift() (bool, error) {
	if dc.source == "" {
		return false, nil
	}

	current, err := SnapshotFile(dc.source)
	if err != nil {
		dc.drifted.Store(true)
		return true, err
	}

	drifted := current.Size != dc.snapshot.Size || !current.ModTime.Equal(dc.snapshot.ModTime)
	dc.drifted.Store(drifted)
	return drifted, nil
}
