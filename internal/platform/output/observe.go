package output

import "context"

// WriteObserver is told the outcome of every write.
type WriteObserver func(sink string, err error)

type observedSink struct {
	Sink
	observe WriteObserver
}

// Observe reports each write to s through fn.
func Observe(s Sink, fn WriteObserver) Sink {
	return observedSink{Sink: s, observe: fn}
}

func (o observedSink) Write(ctx context.Context, doc Document) error {
	err := o.Sink.Write(ctx, doc)
	o.observe(o.Sink.Describe(), err)
	return err
}
