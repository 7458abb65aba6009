package attack

import "fmt"

// Constructor builds a Strategy from its JSON-decoded configuration.
type Constructor func(cfg map[string]any) (Strategy, error)

// registry maps attack names to constructors. Modules self-register via
// init(), generalising the corpus's transaction-handler self-registration
// pattern (a package-level registry filled by each module's init()) from
// dispatching transaction types to dispatching named attack scenarios.
var registry = make(map[string]Constructor)

// Register adds a constructor under name. Panics on duplicate registration,
// since that always indicates a build-time mistake, never a runtime one.
func Register(name string, ctor Constructor) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("attack: constructor already registered for %q", name))
	}
	registry[name] = ctor
}

// New builds the named strategy, or an error if name is unregistered.
func New(name string, cfg map[string]any) (Strategy, error) {
	if name == "" {
		return nil, nil
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("attack: no such strategy %q", name)
	}
	return ctor(cfg)
}
