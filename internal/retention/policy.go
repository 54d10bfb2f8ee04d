// Package retention implements the age-based purge of patient records and
// the persisted policy that drives it.
package retention

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/clinicore/clinicore/internal/models"
)

// PolicyStore persists the RetentionPolicy as a small JSON file. All access
// goes through one mutex so a sweep invoked from two goroutines cannot lose
// an update.
type PolicyStore struct {
	path string
	mu   sync.Mutex
}

func NewPolicyStore(path string) *PolicyStore {
	return &PolicyStore{path: path}
}

// Load reads the persisted policy, creating and persisting the default one
// on first access.
func (s *PolicyStore) Load() (models.RetentionPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save persists the policy, replacing the previous contents.
func (s *PolicyStore) Save(p models.RetentionPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

// Update applies fn to the current policy and persists the result as one
// read-modify-write step under the store lock.
func (s *PolicyStore) Update(fn func(p *models.RetentionPolicy)) (models.RetentionPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return models.RetentionPolicy{}, err
	}

	fn(&p)

	if err := s.save(p); err != nil {
		return models.RetentionPolicy{}, err
	}

	return p, nil
}

func (s *PolicyStore) load() (models.RetentionPolicy, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			p := models.DefaultRetentionPolicy()
			if err := s.save(p); err != nil {
				return models.RetentionPolicy{}, err
			}
			return p, nil
		}
		return models.RetentionPolicy{}, fmt.Errorf("retention: reading policy: %w", err)
	}

	var p models.RetentionPolicy
	if err := json.Unmarshal(data, &p); err != nil {
		return models.RetentionPolicy{}, fmt.Errorf("retention: parsing policy: %w", err)
	}
	if p.RetentionDays <= 0 {
		p.RetentionDays = models.DefaultRetentionDays
	}

	return p, nil
}

func (s *PolicyStore) save(p models.RetentionPolicy) error {
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return fmt.Errorf("retention: encoding policy: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("retention: writing policy: %w", err)
	}
	return nil
}
