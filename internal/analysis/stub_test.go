package analysis

import (
	"context"
	"sync"

	"curebird/internal/extract"
	"curebird/internal/providers"
)

// stubCompleter answers per operation and records every request.
type stubCompleter struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	reqs    []providers.GenerateRequest
}

func newStub() *stubCompleter {
	return &stubCompleter{replies: map[string]string{}, errs: map[string]error{}}
}

func (s *stubCompleter) Complete(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if err := s.errs[req.Operation]; err != nil {
		return providers.GenerateResponse{}, providers.ProviderInfo{Name: "stub"}, err
	}
	return providers.GenerateResponse{Text: s.replies[req.Operation]}, providers.ProviderInfo{Name: "stub"}, nil
}

func (s *stubCompleter) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reqs {
		if r.Operation == op {
			n++
		}
	}
	return n
}

func (s *stubCompleter) last(op string) providers.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reqs) - 1; i >= 0; i-- {
		if s.reqs[i].Operation == op {
			return s.reqs[i]
		}
	}
	return providers.GenerateRequest{}
}

type staticText string

func (s staticText) Extract(context.Context, extract.Document) string { return string(s) }
