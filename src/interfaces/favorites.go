package interfaces

// -----------------------------------------------------------------------------
// IFavoritesService is the user-selected set of asset ids tracked for
// price alerting.
// -----------------------------------------------------------------------------

type IFavoritesService interface {

	// Add marks an id as favorite. Adding an existing member is a no-op.
	Add(id string) error

	// Remove unmarks an id. Removing a non-member is a no-op.
	Remove(id string) error

	// -----------------------------------------------------------------------------

	IsFavorite(id string) bool

	// List returns a copy of the current favorite id set.
	List() []string

	// -----------------------------------------------------------------------------

	// Subscribe returns a channel signalled after every effective mutation,
	// plus a cancel func. Each subscriber gets an independent channel.
	Subscribe() (<-chan struct{}, func())
}
