package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

// document is the on-disk layout: {"jobs": {<id>: <job>}}.
type document struct {
	Jobs map[string]domain.Job `json:"jobs"`
}

// FileStore keeps every job in one JSON document that is rewritten in full on
// each mutation. The mutex spans the whole load-mutate-save cycle so
// concurrent writers cannot lose each other's updates.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the parent directory if needed. The document itself is
// created lazily by the first write.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &domain.StoreError{Op: "init", Err: err}
		}
	}
	return &FileStore{filePath: path}, nil
}

func (s *FileStore) Path() string { return s.filePath }

func (s *FileStore) Create(ctx context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := doc.Jobs[job.ID]; exists {
		return &domain.StoreError{Op: "create", Err: fmt.Errorf("job %s already exists", job.ID)}
	}
	doc.Jobs[job.ID] = job
	return s.save(doc)
}

func (s *FileStore) Update(ctx context.Context, id string, fn func(*domain.Job) error) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return domain.Job{}, err
	}
	job, ok := doc.Jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	if err := fn(&job); err != nil {
		return domain.Job{}, err
	}
	doc.Jobs[id] = job
	if err := s.save(doc); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return domain.Job{}, err
	}
	job, ok := doc.Jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return job, nil
}

// List returns every job ordered by creation time.
func (s *FileStore) List(ctx context.Context) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(doc.Jobs))
	for _, job := range doc.Jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (s *FileStore) Close() error { return nil }

// load reads the document from disk. A missing file is an empty document.
func (s *FileStore) load() (document, error) {
	doc := document{Jobs: make(map[string]domain.Job)}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, &domain.StoreError{Op: "read", Err: err}
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, &domain.StoreError{Op: "decode", Err: fmt.Errorf("%w: %v", domain.ErrCorrupt, err)}
	}
	if doc.Jobs == nil {
		doc.Jobs = make(map[string]domain.Job)
	}
	return doc, nil
}

// save writes the document to a temp file and renames it over the original,
// so readers never observe a half-written document.
func (s *FileStore) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &domain.StoreError{Op: "encode", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return &domain.StoreError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.StoreError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.StoreError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return &domain.StoreError{Op: "write", Err: err}
	}

	log.Debug().Int("jobs", len(doc.Jobs)).Str("path", s.filePath).Msg("💾 job document saved")
	return nil
}
