package hostlink

import (
	"fmt"
	"sync"

	"github.com/funvibe/hostlink/internal/dispatch"
)

// Registry accumulates bound native functions by name and assembles them
// into overloaded sets per a Config. Registering the same name several
// times accumulates overloads for that name.
type Registry struct {
	frontend *Frontend
	router   dispatch.Router
	cache    *dispatch.ResolutionCache

	mu    sync.Mutex
	funcs map[string][]*dispatch.Alternative
}

// NewRegistry builds a registry whose sets will share the given router
// and cache. A nil cache selects the process-wide shared cache.
func NewRegistry(frontend *Frontend, router dispatch.Router, cache *dispatch.ResolutionCache) *Registry {
	return &Registry{
		frontend: frontend,
		router:   router,
		cache:    cache,
		funcs:    make(map[string][]*dispatch.Alternative),
	}
}

// Register binds a Go function under a name.
func (r *Registry) Register(name string, fn any) error {
	alt, err := BindFunc(r.frontend, fn)
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	r.RegisterAlternative(name, alt)
	return nil
}

// RegisterAlternative records an already-built alternative under a name.
func (r *Registry) RegisterAlternative(name string, alt *dispatch.Alternative) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = append(r.funcs[name], alt)
}

// Build assembles one overloaded set per config group. Within a group,
// alternatives whose exact signature is already present are skipped, so
// listing overlapping names does not manufacture duplicates.
func (r *Registry) Build(cfg *Config) (map[string]*dispatch.OverloadedSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sets := make(map[string]*dispatch.OverloadedSet, len(cfg.Groups))
	for _, group := range cfg.Groups {
		set := dispatch.NewOverloadedSet(group.Name, r.frontend, r.router, r.cache)
		for _, name := range group.Functions {
			alts, ok := r.funcs[name]
			if !ok {
				return nil, fmt.Errorf("group %q: unknown function %q", group.Name, name)
			}
			for _, alt := range alts {
				if set.SeekAlternative(alt.Signature()) != nil {
					continue
				}
				set.AddAlternative(alt)
			}
		}
		sets[group.Name] = set
	}
	return sets, nil
}
