package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/records"
	"github.com/jeevithdev/spotq/internal/repository"
)

// memStore is an in-memory RecordStore with the ordering, uniqueness and
// not-found behaviour of repository.Store.
type memStore[T any, P model.Record[T]] struct {
	mu   sync.Mutex
	kind records.Kind
	seq  int
	docs map[uuid.UUID]memDoc
}

type memDoc struct {
	seq  int
	body []byte
	meta model.Meta
}

func newMemStore[T any, P model.Record[T]](kind records.Kind) *memStore[T, P] {
	return &memStore[T, P]{kind: kind, docs: map[uuid.UUID]memDoc{}}
}

func (s *memStore[T, P]) List(ctx context.Context) ([]P, error) {
	return s.ListByDate(ctx, model.Date{}, model.Date{})
}

func (s *memStore[T, P]) ListByDate(_ context.Context, from, to model.Date) ([]P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []memDoc
	for _, d := range s.docs {
		if s.inRange(d.body, from, to) {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].seq > docs[j].seq })
	out := []P{}
	for _, d := range docs {
		out = append(out, s.decode(d))
	}
	return out, nil
}

func (s *memStore[T, P]) Get(_ context.Context, id uuid.UUID) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.decode(d), nil
}

func (s *memStore[T, P]) Create(_ context.Context, rec P) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	body := s.encode(rec)
	if err := s.checkUnique(uuid.Nil, body); err != nil {
		return err
	}
	s.seq++
	now := time.Now()
	meta := model.Meta{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	s.docs[meta.ID] = memDoc{seq: s.seq, body: body, meta: meta}
	*rec.Metadata() = meta
	return nil
}

func (s *memStore[T, P]) Update(_ context.Context, id uuid.UUID, mutate func(P) error) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec := s.decode(d)
	if err := mutate(rec); err != nil {
		return nil, err
	}
	body := s.encode(rec)
	if err := s.checkUnique(id, body); err != nil {
		return nil, err
	}
	d.body = body
	d.meta.UpdatedAt = time.Now()
	s.docs[id] = d
	return s.decode(d), nil
}

func (s *memStore[T, P]) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memStore[T, P]) Summary(_ context.Context, from, to model.Date) ([]repository.SummaryRow, error) {
	sum := s.kind.Summary
	if sum == nil {
		return nil, fmt.Errorf("%s has no summary", s.kind.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := map[string]*repository.SummaryRow{}
	var keys []string
	for _, d := range s.docs {
		if !s.inRange(d.body, from, to) {
			continue
		}
		doc := bodyMap(d.body)
		group := map[string]string{}
		var parts []string
		for _, g := range sum.GroupBy {
			v := fmt.Sprint(lookup(doc, g))
			group[g] = v
			parts = append(parts, v)
		}
		key := strings.Join(parts, "\x00")
		row, ok := groups[key]
		if !ok {
			row = &repository.SummaryRow{Group: group, Totals: map[string]float64{}}
			for _, f := range sum.Sum {
				row.Totals[f] = 0
			}
			groups[key] = row
			keys = append(keys, key)
		}
		row.Count++
		for _, f := range sum.Sum {
			if v, ok := lookup(doc, f).(float64); ok {
				row.Totals[f] += v
			}
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := []repository.SummaryRow{}
	for _, k := range keys {
		out = append(out, *groups[k])
	}
	return out, nil
}

func (s *memStore[T, P]) checkUnique(self uuid.UUID, body []byte) error {
	if s.kind.UniqueField == "" {
		return nil
	}
	v := lookup(bodyMap(body), s.kind.UniqueField)
	for id, d := range s.docs {
		if id != self && lookup(bodyMap(d.body), s.kind.UniqueField) == v {
			return &repository.DuplicateError{Field: s.kind.UniqueField, Value: fmt.Sprint(v)}
		}
	}
	return nil
}

func (s *memStore[T, P]) inRange(body []byte, from, to model.Date) bool {
	day, _ := lookup(bodyMap(body), s.kind.DateField).(string)
	if !from.IsZero() && day < from.String() {
		return false
	}
	if !to.IsZero() && day > to.String() {
		return false
	}
	return true
}

func (s *memStore[T, P]) encode(rec P) []byte {
	cp := *rec
	*P(&cp).Metadata() = model.Meta{}
	body, err := json.Marshal(&cp)
	if err != nil {
		panic(err)
	}
	return body
}

func (s *memStore[T, P]) decode(d memDoc) P {
	var rec T
	if err := json.Unmarshal(d.body, &rec); err != nil {
		panic(err)
	}
	p := P(&rec)
	*p.Metadata() = d.meta
	return p
}

func bodyMap(body []byte) map[string]any {
	var m map[string]any
	_ = json.Unmarshal(body, &m)
	return m
}

func lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}
