package sysexec

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// Fake is an in-memory Runner for tests. Command outcomes are scripted per
// prefix; files live in a map. The zero value is usable.
type Fake struct {
	mu sync.Mutex

	// Responses maps a command-line prefix to a queue of results. The first
	// matching prefix wins; each call consumes the head of the queue and the
	// last element repeats forever.
	Responses map[string][]Result

	// Commands records every line passed to Run, in order.
	Commands []string

	Files map[string][]byte
	Dirs  map[string]bool
}

func NewFake() *Fake {
	return &Fake{
		Responses: make(map[string][]Result),
		Files:     make(map[string][]byte),
		Dirs:      make(map[string]bool),
	}
}

// Script queues results for command lines starting with prefix.
func (f *Fake) Script(prefix string, results ...Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[prefix] = append(f.Responses[prefix], results...)
}

func (f *Fake) Run(ctx context.Context, line string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Status: -1}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = append(f.Commands, line)

	// Longest matching prefix wins so "apt-get update" can be scripted
	// separately from a catch-all "apt-get".
	var best string
	for prefix := range f.Responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return Result{Status: 0}, nil
	}
	queue := f.Responses[best]
	head := queue[0]
	if len(queue) > 1 {
		f.Responses[best] = queue[1:]
	}
	return head, nil
}

// Ran reports how many recorded commands start with prefix.
func (f *Fake) Ran(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, line := range f.Commands {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func (f *Fake) ReadFile(p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Files[p]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: p, Err: os.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (f *Fake) WriteFile(p string, data []byte, perm os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[p] = append([]byte(nil), data...)
	return nil
}

func (f *Fake) Stat(p string) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Dirs[p] {
		return true, true
	}
	_, ok := f.Files[p]
	return ok, false
}

func (f *Fake) MkdirAll(p string, perm os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p != "/" && p != "." && p != "" {
		f.Dirs[p] = true
		p = path.Dir(p)
	}
	return nil
}

func (f *Fake) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Files[p]; !ok && !f.Dirs[p] {
		return &os.PathError{Op: "remove", Path: p, Err: os.ErrNotExist}
	}
	delete(f.Files, p)
	delete(f.Dirs, p)
	return nil
}

func (f *Fake) RemoveAll(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name := range f.Files {
		if name == p || strings.HasPrefix(name, p+"/") {
			delete(f.Files, name)
		}
	}
	for name := range f.Dirs {
		if name == p || strings.HasPrefix(name, p+"/") {
			delete(f.Dirs, name)
		}
	}
	return nil
}

// Dump lists the fake filesystem, for failure messages in tests.
func (f *Fake) Dump() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Files))
	for name := range f.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s (%d bytes)\n", name, len(f.Files[name]))
	}
	return b.String()
}
