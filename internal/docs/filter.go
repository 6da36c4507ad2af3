// Package docs filters a master OpenAPI document into role-specific views.
// Each operation in the master carries an x-roles list; a filtered view keeps
// only the operations visible to the requested role set, optionally narrowed
// to a method allow-list (viewer variants are GET-only).
package docs

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Library struct {
	masterPath string

	mu     sync.Mutex
	master map[string]any
	cache  map[string][]byte
}

func NewLibrary(masterPath string) *Library {
	return &Library{
		masterPath: strings.TrimSpace(masterPath),
		cache:      map[string][]byte{},
	}
}

// Filtered returns the YAML document containing only operations whose x-roles
// intersect allowedRoles, restricted to allowedMethods when non-empty.
// Results are cached per variant key.
func (l *Library) Filtered(key string, allowedRoles []string, allowedMethods []string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache[key]; ok {
		return cached, nil
	}

	master, err := l.loadLocked()
	if err != nil {
		return nil, err
	}

	filtered := filterSpec(master, allowedRoles, allowedMethods)
	out, err := yaml.Marshal(filtered)
	if err != nil {
		return nil, fmt.Errorf("marshal filtered spec: %w", err)
	}

	l.cache[key] = out
	return out, nil
}

func (l *Library) loadLocked() (map[string]any, error) {
	if l.master != nil {
		return l.master, nil
	}

	if l.masterPath == "" {
		return nil, fmt.Errorf("openapi master path is not configured")
	}

	raw, err := os.ReadFile(l.masterPath)
	if err != nil {
		return nil, fmt.Errorf("read openapi master: %w", err)
	}

	var master map[string]any
	if err := yaml.Unmarshal(raw, &master); err != nil {
		return nil, fmt.Errorf("parse openapi master: %w", err)
	}

	l.master = master
	return master, nil
}

func filterSpec(master map[string]any, allowedRoles []string, allowedMethods []string) map[string]any {
	clone := map[string]any{}
	for k, v := range master {
		clone[k] = v
	}

	paths, _ := master["paths"].(map[string]any)
	filteredPaths := map[string]any{}

	for path, rawOps := range paths {
		ops, ok := rawOps.(map[string]any)
		if !ok {
			continue
		}

		filteredOps := map[string]any{}
		for method, rawOp := range ops {
			op, ok := rawOp.(map[string]any)
			if !ok {
				continue
			}

			if !roleMatches(op, allowedRoles) || !methodMatches(method, allowedMethods) {
				continue
			}
			filteredOps[method] = op
		}

		if len(filteredOps) > 0 {
			filteredPaths[path] = filteredOps
		}
	}

	clone["paths"] = filteredPaths
	return clone
}

func roleMatches(op map[string]any, allowedRoles []string) bool {
	rawRoles, _ := op["x-roles"].([]any)
	for _, raw := range rawRoles {
		opRole, _ := raw.(string)
		for _, allowed := range allowedRoles {
			if opRole == allowed {
				return true
			}
		}
	}
	return false
}

func methodMatches(method string, allowedMethods []string) bool {
	if len(allowedMethods) == 0 {
		return true
	}

	for _, allowed := range allowedMethods {
		if strings.EqualFold(method, allowed) {
			return true
		}
	}
	return false
}
