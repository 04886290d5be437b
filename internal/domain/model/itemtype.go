package model

// ItemTypeTopic is the item type id for forum topics.
const ItemTypeTopic int64 = 1

// ItemType classifies the kind of entity a note or follow attaches to.
type ItemType struct {
	ID   int64
	Name string
}

// ItemTypeRegistry is an explicit mapping from item type id to item type,
// passed into services at construction. Registration happens once at startup;
// the registry is read-only afterwards and safe for concurrent use.
type ItemTypeRegistry struct {
	types map[int64]ItemType
}

// NewItemTypeRegistry creates a registry containing the given item types.
func NewItemTypeRegistry(types ...ItemType) *ItemTypeRegistry {
	m := make(map[int64]ItemType, len(types))
	for _, t := range types {
		m[t.ID] = t
	}
	return &ItemTypeRegistry{types: m}
}

// DefaultItemTypes returns the registry with the item types this application
// ships with.
func DefaultItemTypes() *ItemTypeRegistry {
	return NewItemTypeRegistry(
		ItemType{ID: ItemTypeTopic, Name: "Topic"},
	)
}

// Contains reports whether the given item type id is registered.
func (r *ItemTypeRegistry) Contains(id int64) bool {
	_, ok := r.types[id]
	return ok
}

// Get returns the item type for the given id.
func (r *ItemTypeRegistry) Get(id int64) (ItemType, bool) {
	t, ok := r.types[id]
	return t, ok
}
