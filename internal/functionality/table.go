package functionality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// Aggregation names the listing operation used for a functionality's values.
// There is one per value variant.
type Aggregation int

const (
	ListInstantValues Aggregation = iota + 1
	ListIntervalValues
	ListInstantLocationValues
)

func (a Aggregation) String() string {
	switch a {
	case ListInstantValues:
		return "list_instant_values"
	case ListIntervalValues:
		return "list_interval_values"
	case ListInstantLocationValues:
		return "list_instant_location_values"
	default:
		return fmt.Sprintf("Aggregation(%d)", int(a))
	}
}

// aggregationFor returns the aggregation bound to a value kind.
func aggregationFor(k value.Kind) (Aggregation, bool) {
	switch k {
	case value.KindInstant:
		return ListInstantValues, true
	case value.KindInterval:
		return ListIntervalValues, true
	case value.KindInstantLocation:
		return ListInstantLocationValues, true
	}
	return 0, false
}

// Entry is one resolved routing table row.
type Entry struct {
	ID          sensor.FunctionalityID
	Kind        value.Kind
	Aggregation Aggregation
	Unit        string
}

// Table is the read-only functionality routing table.
type Table struct {
	entries map[sensor.FunctionalityID]Entry
}

// Definition is the input for one table row.
type Definition struct {
	ID   sensor.FunctionalityID
	Kind value.Kind
	Unit string
}

// NewTable builds a table, rejecting blank or duplicate IDs and unknown kinds.
func NewTable(defs []Definition) (*Table, error) {
	t := &Table{entries: make(map[sensor.FunctionalityID]Entry, len(defs))}
	for _, d := range defs {
		if strings.TrimSpace(string(d.ID)) == "" {
			return nil, fmt.Errorf("%w: blank functionality id", ErrInvalidTable)
		}
		if _, dup := t.entries[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate functionality %q", ErrInvalidTable, d.ID)
		}
		agg, ok := aggregationFor(d.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: functionality %q has unknown variant %s", ErrInvalidTable, d.ID, d.Kind)
		}
		t.entries[d.ID] = Entry{ID: d.ID, Kind: d.Kind, Aggregation: agg, Unit: d.Unit}
	}
	return t, nil
}

// FromConfig builds the table from the functionalities section of the config.
func FromConfig(rows []config.FunctionalityConfig) (*Table, error) {
	defs := make([]Definition, 0, len(rows))
	for _, row := range rows {
		kind, err := value.ParseKind(row.Variant)
		if err != nil {
			return nil, fmt.Errorf("%w: functionality %q: %w", ErrInvalidTable, row.ID, err)
		}
		defs = append(defs, Definition{ID: sensor.FunctionalityID(row.ID), Kind: kind, Unit: row.Unit})
	}
	return NewTable(defs)
}

// Lookup returns the full entry for id.
func (t *Table) Lookup(id sensor.FunctionalityID) (Entry, error) {
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownFunctionality, id)
	}
	return e, nil
}

// ResolveStore returns the value variant recorded by sensors of id.
func (t *Table) ResolveStore(id sensor.FunctionalityID) (value.Kind, error) {
	e, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}
	return e.Kind, nil
}

// ResolveAggregation returns the aggregation used to list values of id.
func (t *Table) ResolveAggregation(id sensor.FunctionalityID) (Aggregation, error) {
	e, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}
	return e.Aggregation, nil
}

// IDs returns the registered functionality IDs in sorted order.
func (t *Table) IDs() []sensor.FunctionalityID {
	ids := make([]sensor.FunctionalityID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered functionalities.
func (t *Table) Len() int { return len(t.entries) }
