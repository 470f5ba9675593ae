package dataflow

import (
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Database is the loaded flow collection together with the indexes derived
// from it. It is never modified after NewDatabase returns, so it can be read
// from any number of goroutines.
type Database struct {
	flows    []Flow
	types    map[string]TypeToken
	typeVars *set.Set[string]
	// degree holds, per type variable name, the number of distinct flows
	// containing it.
	degree map[string]int
}

// NewDatabase builds a database and its indexes from flows, kept in the given order.
func NewDatabase(flows []Flow) *Database {
	db := &Database{
		flows:    make([]Flow, len(flows)),
		types:    make(map[string]TypeToken),
		typeVars: set.New[string](0),
		degree:   make(map[string]int),
	}
	copy(db.flows, flows)

	for _, flow := range db.flows {
		seen := set.New[string](0)

		for _, t := range flow.tokens {
			switch tok := t.(type) {
			case TypeToken:
				db.types[tok.Name] = tok
			case TypeVarToken:
				db.typeVars.Insert(tok.Name)

				if seen.Insert(tok.Name) {
					db.degree[tok.Name]++
				}
			}
		}
	}

	return db
}

// Len returns the number of flows.
func (db *Database) Len() int {
	return len(db.flows)
}

// Flow returns the i-th flow.
func (db *Database) Flow(i int) Flow {
	return db.flows[i]
}

// Flows returns the flows in load order.
func (db *Database) Flows() []Flow {
	return slices.Clone(db.flows)
}

// Type returns the most recently seen definition of a type name.
func (db *Database) Type(name string) (TypeToken, bool) {
	t, ok := db.types[name]
	return t, ok
}

// TypeNames returns the distinct type names, sorted.
func (db *Database) TypeNames() []string {
	names := make([]string, 0, len(db.types))
	for name := range db.types {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// HasTypeVar reports whether a type variable with this name occurs in any flow.
func (db *Database) HasTypeVar(name string) bool {
	return db.typeVars.Contains(name)
}

// TypeVars returns the distinct type variable names, sorted.
func (db *Database) TypeVars() []string {
	names := db.typeVars.Slice()
	slices.Sort(names)

	return names
}

// Degree returns the number of distinct flows that contain a TypeVarToken
// named name. Occurrences within one flow count once.
func (db *Database) Degree(name string) int {
	return db.degree[name]
}
