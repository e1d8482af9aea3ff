package realtime

import "context"

// Bus carries room payloads from producers (live sessions, the REST send path,
// queue workers) to the subscribers registered in every serving process.
type Bus interface {
	Publish(ctx context.Context, roomKey string, payload []byte) error
	// Run blocks until ctx is done, feeding remote publications into the local registry.
	Run(ctx context.Context) error
}

// LocalBus delivers straight into one in-process Registry.
type LocalBus struct {
	registry *Registry
}

func NewLocalBus(registry *Registry) *LocalBus {
	return &LocalBus{registry: registry}
}

var _ Bus = (*LocalBus)(nil)

func (b *LocalBus) Publish(_ context.Context, roomKey string, payload []byte) error {
	b.registry.Broadcast(roomKey, payload)
	return nil
}

func (b *LocalBus) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
