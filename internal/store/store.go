// Package store defines the data access contract of the directory.
//
// Uniqueness of organization names and user emails is checked with a read before the
// write. Two concurrent writers with the same value can both pass that check; backends
// without a native unique constraint accept this race.
package store

import "errors"

// Sentinel errors for common error conditions
var (
	ErrThrottled = errors.New("request throttled")
)

// Stores groups the collections used by the directory.
type Stores struct {
	Organizations OrganizationStore
	Users         UserStore
}
