package client

import (
	"maps"
	"net/url"
	"strconv"
	"sync"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/profile"
)

// params is the base request configuration of a resource. Setters write to
// it; every request works on a snapshot so concurrent calls never share a
// payload.
type params struct {
	mu     sync.RWMutex
	values map[string]any
}

func newParams(defaults map[string]any) *params {
	return &params{values: defaults}
}

func (p *params) set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

func (p *params) delete(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		delete(p.values, k)
	}
}

func (p *params) get(key string) any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[key]
}

func (p *params) snapshot() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.values)
}

// setProfile attaches the profile id, and its overrides only when there
// are any.
func (p *params) setProfile(prof *profile.Profile) error {
	if prof == nil {
		return models.InvalidArgument("Provided profile is not a 'KYCProfile' object.")
	}
	overrides := prof.Overrides()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.values["profile"] = prof.ID()
	if len(overrides) > 0 {
		p.values["profileOverride"] = overrides
	} else {
		delete(p.values, "profileOverride")
	}
	return nil
}

func (p *params) profileSet() bool {
	s, _ := p.get("profile").(string)
	return s != ""
}

func validateList(order, limit int) error {
	if order != -1 && order != 1 {
		return models.InvalidArgument("'order' should be integer of 1 or -1.")
	}
	if limit <= 0 || limit > 100 {
		return models.InvalidArgument("'limit' should be a positive integer greater than 0 and less than or equal to 100.")
	}
	return nil
}

func listQuery(order, limit, offset int) url.Values {
	q := url.Values{}
	q.Set("order", strconv.Itoa(order))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func required(value, message string) error {
	if value == "" {
		return models.InvalidArgument("%s", message)
	}
	return nil
}
