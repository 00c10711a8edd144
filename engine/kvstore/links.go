package kvstore

import (
	"fmt"
	"slices"
)

// Link adds a link from one key to another, or updates its coefficient.
func (s *Store) Link(from, to string, coef float64) error {
	i, err := s.find(from)
	if err != nil {
		return err
	}
	j, err := s.find(to)
	if err != nil {
		return err
	}
	s.setLink(i, j, coef)
	return nil
}

func (s *Store) setLink(i, j int, coef float64) {
	k := &s.keys[i]
	for l := range k.links {
		if k.links[l].to == j {
			k.links[l].coef = coef
			return
		}
	}
	k.links = append(k.links, link{to: j, coef: coef})
	s.keys[j].backlinks = append(s.keys[j].backlinks, i)
}

// Unlink removes the link from one key to another.
func (s *Store) Unlink(from, to string) error {
	i, err := s.find(from)
	if err != nil {
		return err
	}
	j, err := s.find(to)
	if err != nil {
		return err
	}
	k := &s.keys[i]
	n := len(k.links)
	k.links = slices.DeleteFunc(k.links, func(l link) bool { return l.to == j })
	if len(k.links) == n {
		return fmt.Errorf("%w: no link %q -> %q", ErrNotFound, from, to)
	}
	s.dropBacklink(j, i)
	return nil
}

// Links returns the outgoing links of the named key.
func (s *Store) Links(name string) ([]Link, error) {
	e, err := s.Find(name)
	if err != nil {
		return nil, err
	}
	return e.Links, nil
}
