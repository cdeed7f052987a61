// Package seed loads a small content-sharing graph of users and pins into
// the database so the question pipeline has something to answer from.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	// ErrDuplicateID indicates two users or two pins share an identifier.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownUser indicates a pin references a user missing from the dataset.
	ErrUnknownUser = errors.New("unknown user")
)

// User is a person who owns pins and can be shared with.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Pin is a piece of content owned by one user and optionally shared with others.
type Pin struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	OwnerID    string    `json:"ownerId"`
	SharedWith []string  `json:"sharedWith,omitempty"`
	Visibility string    `json:"visibility,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// Dataset is the unit loaded by a Loader.
type Dataset struct {
	Users []User `json:"users"`
	Pins  []Pin  `json:"pins"`
}

// LoadDataset decodes a JSON dataset from path and validates it.
func LoadDataset(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var ds Dataset
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("validate %s: %w", path, err)
	}
	return ds, nil
}

// Validate checks identifiers are present and unique and that every owner
// and viewer is a known user.
func (d Dataset) Validate() error {
	users := make(map[string]struct{}, len(d.Users))
	for i, u := range d.Users {
		id := strings.TrimSpace(u.ID)
		if id == "" {
			return fmt.Errorf("user %d: id is required", i)
		}
		if _, ok := users[id]; ok {
			return fmt.Errorf("%w: user %s", ErrDuplicateID, id)
		}
		users[id] = struct{}{}
	}

	pins := make(map[string]struct{}, len(d.Pins))
	for i, p := range d.Pins {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("pin %d: id is required", i)
		}
		if _, ok := pins[id]; ok {
			return fmt.Errorf("%w: pin %s", ErrDuplicateID, id)
		}
		pins[id] = struct{}{}

		if _, ok := users[p.OwnerID]; !ok {
			return fmt.Errorf("%w: pin %s owner %q", ErrUnknownUser, id, p.OwnerID)
		}
		for _, viewer := range p.SharedWith {
			if _, ok := users[viewer]; !ok {
				return fmt.Errorf("%w: pin %s viewer %q", ErrUnknownUser, id, viewer)
			}
		}
	}
	return nil
}

// Demo returns the built-in dataset used when no file is given.
func Demo() Dataset {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	created := func(days int) *time.Time {
		t := base.AddDate(0, 0, days)
		return &t
	}
	return Dataset{
		Users: []User{
			{ID: "alice", Name: "Alice", Email: "alice@example.com"},
			{ID: "bob", Name: "Bob", Email: "bob@example.com"},
			{ID: "carol", Name: "Carol", Email: "carol@example.com"},
		},
		Pins: []Pin{
			{ID: "pin-1", Title: "Hiking trails near Denver", OwnerID: "alice", SharedWith: []string{"bob"}, Visibility: "PRIVATE", CreatedAt: created(0)},
			{ID: "pin-2", Title: "Sourdough starter tips", OwnerID: "alice", Visibility: "PUBLIC", CreatedAt: created(1)},
			{ID: "pin-3", Title: "Reading nook ideas", OwnerID: "bob", SharedWith: []string{"alice", "carol"}, Visibility: "PRIVATE", CreatedAt: created(2)},
		},
	}
}
