package sandbox

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

// A stored image, contract or export archive
type File struct {
	ContentType string
	Data        []byte
}

// collection keeps records in insertion order.
type collection[T any] struct {
	items map[string]T
	order []string
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: map[string]T{}}
}

func (c *collection[T]) put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) delete(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return true
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Store is the in-memory state of the sandbox.
type Store struct {
	mu sync.RWMutex

	transactions *collection[models.Transaction]
	templates    *collection[models.ContractTemplate]
	docupass     *collection[models.Docupass]
	files        map[string]File
	exports      map[string]File
	cache        map[string][]byte

	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		transactions: newCollection[models.Transaction](),
		templates:    newCollection[models.ContractTemplate](),
		docupass:     newCollection[models.Docupass](),
		files:        map[string]File{},
		exports:      map[string]File{},
		cache:        map[string][]byte{},
		Now:          time.Now,
	}
}

func (s *Store) PutTransaction(tx models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions.put(tx.TransactionID, tx)
}

func (s *Store) Transaction(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions.get(id)
}

// Transactions returns all transactions, oldest first.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions.list()
}

func (s *Store) UpdateDecision(id, decision string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions.get(id)
	if !ok {
		return false
	}
	tx.Decision = decision
	s.transactions.put(id, tx)
	return true
}

// DeleteTransaction removes a transaction along with its images and files.
func (s *Store) DeleteTransaction(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions.get(id)
	if !ok {
		return false
	}
	for token := range maps.Values(tx.OutputImage) {
		delete(s.files, token)
	}
	for _, f := range tx.OutputFile {
		delete(s.files, f.FileName)
	}
	return s.transactions.delete(id)
}

func (s *Store) PutTemplate(t models.ContractTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates.put(t.TemplateID, t)
}

func (s *Store) Template(id string) (models.ContractTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templates.get(id)
}

func (s *Store) Templates() []models.ContractTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templates.list()
}

func (s *Store) DeleteTemplate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.delete(id)
}

func (s *Store) PutDocupass(d models.Docupass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docupass.put(d.Reference, d)
}

func (s *Store) DocupassList() []models.Docupass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docupass.list()
}

func (s *Store) DeleteDocupass(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docupass.delete(reference)
}

func (s *Store) PutFile(name string, f File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = f
}

func (s *Store) File(name string) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[name]
	return f, ok
}

// Export archives are kept apart from vault files since they are served
// without an API key.
func (s *Store) PutExport(name string, f File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports[name] = f
}

func (s *Store) Export(name string) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.exports[name]
	return f, ok
}

// Cache keeps an uploaded image under a reference token for later scans.
func (s *Store) Cache(token string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[token] = data
}

func (s *Store) Cached(token string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.cache[token]
	return data, ok
}
