package theme

import "context"

// InitPolicy selects what a Controller does with the persisted selection at
// construction. The variants are NoInit, LoadFromStore and CustomInit.
type InitPolicy interface {
	isInitPolicy()
}

// NoInit leaves the default selection in place.
type NoInit struct{}

// LoadFromStore reads the persisted selection in the background and applies
// it if it names a registered theme.
type LoadFromStore struct{}

// CustomInit is called synchronously during construction with the new
// controller and a pending read of the persisted selection. The controller
// applies nothing itself; the handler decides.
type CustomInit func(c *Controller, pending *PendingLoad)

func (NoInit) isInitPolicy()        {}
func (LoadFromStore) isInitPolicy() {}
func (CustomInit) isInitPolicy()    {}

// InitPolicyFrom maps the flag/handler pair used by configuration files onto
// a policy. Setting both is ambiguous and rejected.
func InitPolicyFrom(loadOnInit bool, handler CustomInit) (InitPolicy, error) {
	switch {
	case loadOnInit && handler != nil:
		return nil, conflictingInitPolicyError("load-on-init and a custom init handler are mutually exclusive")
	case loadOnInit:
		return LoadFromStore{}, nil
	case handler != nil:
		return handler, nil
	default:
		return NoInit{}, nil
	}
}

// PendingLoad is an in-flight read of the persisted selection.
type PendingLoad struct {
	done    chan struct{}
	cancel  context.CancelFunc
	barrier func()

	id  string
	ok  bool
	err error
}

func newPendingLoad(cancel context.CancelFunc, barrier func()) *PendingLoad {
	return &PendingLoad{done: make(chan struct{}), cancel: cancel, barrier: barrier}
}

func (p *PendingLoad) finish(id string, ok bool, err error) {
	p.id, p.ok, p.err = id, ok, err
	close(p.done)
}

// Done is closed once the read (and, for LoadFromStore, the resulting
// transition) has completed.
func (p *PendingLoad) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the read completes or ctx ends. ok is false when nothing
// was persisted.
func (p *PendingLoad) Wait(ctx context.Context) (id string, ok bool, err error) {
	select {
	case <-p.done:
		return p.id, p.ok, p.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// Cancel abandons the read. Stores that honour their context return early.
// Once Cancel returns, a LoadFromStore read can no longer change the
// selection; one that already applied stays applied.
func (p *PendingLoad) Cancel() {
	p.cancel()
	if p.barrier != nil {
		p.barrier()
	}
}
