package achievement

// Registry maps condition kinds to their handlers. It is built once at startup
// and read-only thereafter; the evaluator dispatches through it by key, so
// adding a condition kind means one handler plus one Register call.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns a registry pre-populated with the built-in handlers.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.Register(KindCountReviews, ReviewCountHandler{})
	r.Register(KindGenreMaster, GenreMasterHandler{})
	r.Register(KindCommentCount, CommentCountHandler{})
	r.Register(KindDistinctGenre, DistinctGenreHandler{})
	r.Register(KindContrarian, ContrarianHandler{})
	return r
}

// Register binds a condition kind to a handler, replacing any previous binding.
func (r *Registry) Register(kind string, h Handler) {
	r.handlers[kind] = h
}

// Get returns the handler for kind, or false when the kind is unknown.
func (r *Registry) Get(kind string) (Handler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

// Kinds returns the registered condition kinds.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.handlers))
	for kind := range r.handlers {
		kinds = append(kinds, kind)
	}
	return kinds
}
